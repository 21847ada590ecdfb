package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/V4T54L/causeway/internal/transform"
	"github.com/V4T54L/causeway/internal/usecase"
)

// ViewAnalyzer is the part of usecase.AnalyzeViewUseCase the handler needs.
type ViewAnalyzer interface {
	View(ctx context.Context, id string, req usecase.ViewRequest) ([]byte, error)
	Render(lines []string, req usecase.ViewRequest) (transform.Rendering, error)
}

type inlineViewRequest struct {
	Lines []string `json:"lines"`
	usecase.ViewRequest
}

// ViewHandler renders transformed views of executions.
type ViewHandler struct {
	useCase        ViewAnalyzer
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewViewHandler(uc ViewAnalyzer, logger *slog.Logger, maxUploadBytes int64) *ViewHandler {
	return &ViewHandler{
		useCase:        uc,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// View renders a stored execution. An empty body means the default view.
func (h *ViewHandler) View(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req usecase.ViewRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.decodeFailed(w, err)
			return
		}
	}

	body, err := h.useCase.View(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ViewInline renders lines sent in the request without storing them.
func (h *ViewHandler) ViewInline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req inlineViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.decodeFailed(w, err)
		return
	}

	rendering, err := h.useCase.Render(req.Lines, req.ViewRequest)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, rendering)
}

func (h *ViewHandler) decodeFailed(w http.ResponseWriter, err error) {
	if isDecodeError(err) {
		respondWithJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
		return
	}
	respondWithError(w, h.logger, err)
}
