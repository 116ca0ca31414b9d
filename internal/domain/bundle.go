package domain

import "time"

// Bundle is the ranked, deduplicated evidence set a strategy hands to
// answer generation: capped documents, capped scored images, and
// strategy metadata.
type Bundle struct {
	Documents []Document
	Images    []ImageRef
	Strategy  Strategy

	// RelevanceScore is set by the corrective pipeline (pre-rewrite score).
	RelevanceScore *float64
	// Entities is set by the speculative pipeline.
	Entities []string
	// QueryVariations is set by the fusion pipeline.
	QueryVariations []string
}

// Answer is the caller-facing result of Ask.
type Answer struct {
	Answer          string
	Images          []ImageRef
	Mode            Strategy
	RelevanceScore  *float64
	Entities        []string
	QueryVariations []string
	Elapsed         time.Duration
}
