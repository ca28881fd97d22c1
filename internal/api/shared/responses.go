// Package shared holds the helpers common to all HTTP handlers:
// response envelopes, request decoding and per-request context values.
package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rosterhq/roster-api/internal/redact"
	"github.com/rosterhq/roster-api/internal/store"
)

// Envelope is the uniform shape of every successful response.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// PageResponse is the serialized form of one page of results, nested
// inside the envelope's data field.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	PageNo        int   `json:"pageNo"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPageResponse converts a store page into its transport form.
func NewPageResponse[T any](p store.Page[T]) PageResponse[T] {
	content := p.Content
	if content == nil {
		content = []T{}
	}
	return PageResponse[T]{
		Content:       content,
		PageNo:        p.Number,
		PageSize:      p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
	}
}

// ErrorBody is the uniform shape of every error response.
type ErrorBody struct {
	Timestamp string   `json:"timestamp"`
	Status    int      `json:"status"`
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Path      string   `json:"path"`
	ErrorCode string   `json:"errorCode"`
	Details   []string `json:"details,omitempty"`
	TraceID   string   `json:"trace_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithJSON writes a success envelope with the given status,
// message and payload.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RespondWithError writes an error body with the given status, machine
// code and message. Detail strings are optional and used for
// field-level validation failures.
func RespondWithError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	errorCode string,
	message string,
	details ...string,
) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"error_code", errorCode,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	writeJSON(w, status, ErrorBody{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
		ErrorCode: errorCode,
		Details:   details,
		TraceID:   traceID,
	})
}

// RespondWithErrorAndLog writes an error body and also logs the
// underlying error, which is never included in the response itself.
// Server errors log at ERROR level, client errors at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	errorCode string,
	userMessage string,
	err error,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("error_code", errorCode),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}
	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithError(w, r, status, errorCode, userMessage)
}
