package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/logger"
	healthuc "github.com/catalogix/askdex/internal/usecase/health"
)

// AskService answers catalog questions.
type AskService interface {
	Ask(ctx context.Context, question, strategy string) (*domain.Answer, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API: one synchronous ask endpoint plus health.
type Server struct {
	ask    AskService
	health HealthService
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(ask AskService, health HealthService, logger *zap.Logger) *Server {
	return &Server{ask: ask, health: health, logger: logger}
}

// Routes registers the API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
}

type askRequest struct {
	Question string `json:"question"`
	Strategy string `json:"strategy,omitempty"`
}

type imageResponse struct {
	Path    string  `json:"image_path"`
	Page    int     `json:"page,omitempty"`
	OCRText string  `json:"ocr_text,omitempty"`
	Score   float64 `json:"score"`
}

type askResponse struct {
	Answer          string          `json:"answer"`
	Images          []imageResponse `json:"images"`
	Mode            string          `json:"mode"`
	RelevanceScore  *float64        `json:"relevance_score,omitempty"`
	Entities        []string        `json:"entities,omitempty"`
	QueryVariations []string        `json:"query_variations,omitempty"`
	ElapsedTime     string          `json:"elapsed_time"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "question is required")
		return
	}

	answer, err := s.ask.Ask(r.Context(), req.Question, req.Strategy)
	if err != nil {
		s.writeAskError(w, r, err)
		return
	}

	resp := askResponse{
		Answer:          answer.Answer,
		Images:          make([]imageResponse, 0, len(answer.Images)),
		Mode:            string(answer.Mode),
		RelevanceScore:  answer.RelevanceScore,
		Entities:        answer.Entities,
		QueryVariations: answer.QueryVariations,
		ElapsedTime:     fmt.Sprintf("%.2fs", answer.Elapsed.Seconds()),
	}
	for _, img := range answer.Images {
		resp.Images = append(resp.Images, imageResponse{
			Path:    img.Path,
			Page:    img.Page,
			OCRText: img.OCRText,
			Score:   img.Score,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeAskError(w http.ResponseWriter, r *http.Request, err error) {
	// Prefer the request-scoped logger (carries request_id) when present.
	logger.FromContextOr(r.Context(), s.logger).Error("Ask request failed", zap.Error(err))
	switch {
	case errors.Is(err, domain.ErrRequestTimeout):
		writeError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, "embedding_provider_error", "embedding provider unavailable")
	case errors.Is(err, domain.ErrSearchBackend):
		writeError(w, http.StatusBadGateway, "search_backend_error", "search backend unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "request failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Checks["database"] == healthuc.CheckError {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
