package askdex

import (
	"time"

	"github.com/catalogix/askdex/internal/domain"
)

// Image is a scored catalog image reference.
type Image struct {
	Path    string
	Page    int
	OCRText string
	Score   float64
}

// Result is the outcome of an Ask call.
type Result struct {
	Answer string
	Images []Image
	// Mode is the strategy that actually ran ("standard", "corrective",
	// "speculative", "fusion").
	Mode string
	// RelevanceScore is set when the corrective strategy ran.
	RelevanceScore *float64
	// Entities is set when the speculative strategy ran.
	Entities []string
	// QueryVariations is set when the fusion strategy ran.
	QueryVariations []string
	Elapsed         time.Duration
}

func resultFromAnswer(a *domain.Answer) Result {
	images := make([]Image, 0, len(a.Images))
	for _, img := range a.Images {
		images = append(images, Image{
			Path:    img.Path,
			Page:    img.Page,
			OCRText: img.OCRText,
			Score:   img.Score,
		})
	}
	return Result{
		Answer:          a.Answer,
		Images:          images,
		Mode:            string(a.Mode),
		RelevanceScore:  a.RelevanceScore,
		Entities:        a.Entities,
		QueryVariations: a.QueryVariations,
		Elapsed:         a.Elapsed,
	}
}
