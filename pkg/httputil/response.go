package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/logger"
	"github.com/utafrali/productreview/pkg/validator"
)

// ErrorResponse is the Spring Boot style error body the catalog API returns.
type ErrorResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

func newErrorResponse(r *http.Request, status int, message string) ErrorResponse {
	return ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged but headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an error body derived from err. AppErrors keep their
// status and message; everything else maps through apperrors.HTTPStatus and
// 5xx details are logged rather than exposed. It prefers the request-scoped
// logger from context (set by the RequestLogger middleware) over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		if appErr.Status >= http.StatusInternalServerError {
			logInternal(l, r, err)
		}
		WriteJSON(w, appErr.Status, newErrorResponse(r, appErr.Status, appErr.Message))
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		message = "resource not found"
	case errors.Is(err, apperrors.ErrConflict):
		message = "resource conflict"
	case errors.Is(err, apperrors.ErrInvalidInput):
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logInternal(l, r, err)
	}

	WriteJSON(w, status, newErrorResponse(r, status, message))
}

func logInternal(l *slog.Logger, r *http.Request, err error) {
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

// WriteValidationError writes a 400 body for a failed request validation,
// with per-field messages when err is a *validator.ValidationError.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	body := newErrorResponse(r, http.StatusBadRequest, err.Error())
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		body.Fields = valErr.Fields()
	}
	WriteJSON(w, http.StatusBadRequest, body)
}

// ParseID parses a positive int64 path parameter. If invalid, it writes a
// 400 response and returns false, signaling the caller to return early.
func ParseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		WriteJSON(w, http.StatusBadRequest, newErrorResponse(r, http.StatusBadRequest, "invalid id: "+param))
		return 0, false
	}
	return id, true
}

// QueryInt reads an optional integer query parameter. A missing value yields
// nil; a malformed one writes a 400 response and returns false.
func QueryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, newErrorResponse(r, http.StatusBadRequest, "invalid "+name+": "+raw))
		return nil, false
	}
	return &n, true
}
