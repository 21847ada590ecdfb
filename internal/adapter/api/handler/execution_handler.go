package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/V4T54L/causeway/internal/domain"
)

// ExecutionIngester is the part of usecase.IngestExecutionUseCase the
// handler needs.
type ExecutionIngester interface {
	Ingest(ctx context.Context, name string, lines []string) (domain.Execution, error)
	Get(ctx context.Context, id string) (domain.Execution, error)
}

type uploadRequest struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// UploadResponse summarizes a stored execution.
type UploadResponse struct {
	ID    string   `json:"id"`
	Hosts []string `json:"hosts"`
	Nodes int      `json:"nodes"`
}

// ExecutionHandler handles uploads and lookups of executions.
type ExecutionHandler struct {
	useCase        ExecutionIngester
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewExecutionHandler(uc ExecutionIngester, logger *slog.Logger, maxUploadBytes int64) *ExecutionHandler {
	return &ExecutionHandler{
		useCase:        uc,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create accepts either a text/plain log or a JSON {"name", "lines"} body.
// For plain text the name comes from the "name" query parameter.
func (h *ExecutionHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var (
		req uploadRequest
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		err = json.NewDecoder(r.Body).Decode(&req)
	case "text/plain", "":
		req.Name = r.URL.Query().Get("name")
		req.Lines, err = readLines(r.Body)
	default:
		http.Error(w, "Unsupported Media Type: "+mediaType, http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		if isDecodeError(err) {
			respondWithJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
			return
		}
		respondWithError(w, h.logger, err)
		return
	}

	exec, err := h.useCase.Ingest(r.Context(), req.Name, req.Lines)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, UploadResponse{ID: exec.ID, Hosts: exec.Hosts, Nodes: exec.NodeCount})
}

// Get returns a stored execution's metadata.
func (h *ExecutionHandler) Get(w http.ResponseWriter, r *http.Request) {
	exec, err := h.useCase.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, exec)
}

func readLines(body io.Reader) ([]string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(raw), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}

func isDecodeError(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
