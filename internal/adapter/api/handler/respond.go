package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/pkg/exception"
	"github.com/V4T54L/causeway/internal/usecase"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Index *int   `json:"index,omitempty"`
	Line  int    `json:"line,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		maxBytesErr *http.MaxBytesError
		ce          *domain.ConstructionError
		ex          *exception.Exception
	)
	switch {
	case errors.As(err, &maxBytesErr):
		respondWithJSON(w, logger, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "payload too large"})
	case errors.As(err, &ce):
		resp := ErrorResponse{Error: ce.Error(), Line: ce.Line}
		if ce.Index >= 0 {
			idx := ce.Index
			resp.Index = &idx
		}
		respondWithJSON(w, logger, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &ex):
		respondWithJSON(w, logger, http.StatusUnprocessableEntity, ErrorResponse{Error: ex.Plain()})
	case usecase.IsQueryError(err):
		respondWithJSON(w, logger, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrExecutionNotFound):
		respondWithJSON(w, logger, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("request failed", "error", err)
		respondWithJSON(w, logger, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
