package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amar030383/languageLearning/internal/ai"
	"github.com/amar030383/languageLearning/internal/audio"
	"github.com/amar030383/languageLearning/internal/core"
	"github.com/amar030383/languageLearning/internal/vocab"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeSourceUnavailable = "source_unavailable"
	CodeNotFound          = "not_found"
	CodeInvalidAudioKind  = "invalid_audio_kind"
	CodeAudioNotReady     = "audio_not_ready"
	CodeInvalidIndex      = "invalid_index"
	CodeInvalidRequest    = "invalid_request"
	CodeInternal          = "internal_error"
)

const maxRequestBody = 1 << 20

// Handler contains all HTTP handlers.
type Handler struct {
	Processor *core.Processor
	Logger    *slog.Logger
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SuccessResponse represents a success response.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	EnglishWord string `json:"english_word"`
}

// NewRouter wires every route and the middleware stack.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	if h.Logger == nil {
		h.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(h.Logger))
	r.Use(RecoverMiddleware(h.Logger))
	r.Use(CorsMiddleware(allowedOrigins))

	r.Get("/", h.Welcome)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/vocabulary", h.ListVocabulary)
		r.Get("/vocabulary/{index}", h.GetVocabulary)
		r.Get("/audio/{index}/{kind}", h.GetAudio)
		r.Head("/audio/{index}/{kind}", h.GetAudio)
		r.Get("/excluded", h.ListExcluded)
		r.Post("/excluded/{index}", h.ExcludeWord)
		r.Delete("/excluded/{index}", h.RestoreWord)
		r.Post("/translate", h.Translate)
		r.Get("/stats", h.GetStats)
	})

	return r
}

// Welcome handles GET /.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "German vocabulary API"})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListVocabulary handles GET /api/vocabulary.
func (h *Handler) ListVocabulary(w http.ResponseWriter, r *http.Request) {
	list, err := h.Processor.GetVocabularyList(r.Context())
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// GetVocabulary handles GET /api/vocabulary/{index}.
func (h *Handler) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	entry, err := h.Processor.GetVocabulary(r.Context(), index)
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// GetAudio handles GET and HEAD /api/audio/{index}/{kind}.
func (h *Handler) GetAudio(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if _, err := audio.ParseKind(kind); err != nil {
		h.respondFailure(w, r, err)
		return
	}

	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	art, err := h.Processor.GetAudio(r.Context(), index, kind)
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}
	defer art.Close()

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(art.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", art.Name))
	w.Header().Set("Last-Modified", art.ModTime.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, art); err != nil {
		h.Logger.Warn("audio stream interrupted", "file", art.Name, "error", err)
	}
}

// ListExcluded handles GET /api/excluded.
func (h *Handler) ListExcluded(w http.ResponseWriter, r *http.Request) {
	list, err := h.Processor.GetExcludedList(r.Context())
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// ExcludeWord handles POST /api/excluded/{index}.
func (h *Handler) ExcludeWord(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	ex, err := h.Processor.ExcludeWord(r.Context(), index)
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "Word excluded", Data: ex})
}

// RestoreWord handles DELETE /api/excluded/{index}.
func (h *Handler) RestoreWord(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	if err := h.Processor.RestoreWord(r.Context(), index); err != nil {
		h.respondFailure(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "Word restored"})
}

// Translate handles POST /api/translate.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid JSON body")
		return
	}

	tr, err := h.Processor.Translate(r.Context(), req.EnglishWord)
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tr)
}

// GetStats handles GET /api/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Processor.GetStats(r.Context())
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// parseIndex extracts the "index" path parameter. Only non-numeric input
// is rejected here; range checks belong to the processor.
// Returns the parsed index and true on success, or writes an error response and returns false.
func parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidIndex, "Invalid index")
		return 0, false
	}
	return index, true
}

// statusFor maps domain errors to a status code and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, audio.ErrInvalidKind):
		return http.StatusBadRequest, CodeInvalidAudioKind
	case errors.Is(err, ai.ErrEmptyText):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, audio.ErrArtifactNotFound):
		return http.StatusNotFound, CodeAudioNotReady
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, vocab.ErrSourceUnavailable):
		return http.StatusInternalServerError, CodeSourceUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (h *Handler) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	message := err.Error()
	if code == CodeInternal {
		message = "Internal server error"
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "path", r.URL.Path, "code", code, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
	}

	respondError(w, status, code, message)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// respondError sends an error JSON response with the given status, code and message.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// CorsMiddleware adds CORS headers. An empty origin list, or one
// containing "*", allows any origin.
func CorsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs HTTP requests.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// RecoverMiddleware recovers from panics and returns a 500 error.
func RecoverMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic", "error", err, "path", r.URL.Path)
					respondError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
