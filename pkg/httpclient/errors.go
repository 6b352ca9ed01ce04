package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/productreview/pkg/errors"
)

// ErrorBody covers the two error shapes a catalog backend returns: the
// Spring Boot default ({"status","error","message","path"}) and the
// envelope form ({"error":{"code","message"}}).
type ErrorBody struct {
	Status  int             `json:"status,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Path    string          `json:"path,omitempty"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// codeAndMessage extracts the most specific code and message from the body.
func (b *ErrorBody) codeAndMessage() (code, message string, ok bool) {
	if len(b.Error) > 0 {
		var env envelopeError
		if json.Unmarshal(b.Error, &env) == nil && (env.Code != "" || env.Message != "") {
			return env.Code, env.Message, true
		}
		var reason string
		if json.Unmarshal(b.Error, &reason) == nil {
			code = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(reason), " ", "_"))
		}
	}
	if b.Message != "" {
		return code, b.Message, true
	}
	return code, "", code != ""
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. If the body matches a known error shape the
// code and message are preserved. Otherwise a generic error carrying the
// status code and raw body is returned.
//
// The caller should only invoke this when resp.StatusCode is not 2xx.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var body ErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil {
		if code, message, ok := body.codeAndMessage(); ok {
			if message == "" {
				message = http.StatusText(resp.StatusCode)
			}
			return mapDownstreamError(resp.StatusCode, code, message)
		}
	}

	// Fallback: unstructured error body.
	return &apperrors.AppError{
		Code:    "UNEXPECTED_RESPONSE",
		Message: fmt.Sprintf("%s returned status %d", serviceName, resp.StatusCode),
		Status:  resp.StatusCode,
		Err:     fmt.Errorf("%w: %s", apperrors.ErrUnexpected, strings.TrimSpace(string(bodyBytes))),
	}
}

// mapDownstreamError translates a status code and error code into an AppError
// whose Message is the downstream message, suitable for display.
func mapDownstreamError(status int, code, message string) error {
	withCode := func(e *apperrors.AppError) error {
		if code != "" {
			e.Code = code
		}
		e.Message = message
		return e
	}

	switch {
	case status == http.StatusNotFound:
		return withCode(&apperrors.AppError{Code: "NOT_FOUND", Status: status, Err: apperrors.ErrNotFound})
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return withCode(&apperrors.AppError{Code: "INVALID_INPUT", Status: status, Err: apperrors.ErrInvalidInput})
	case status == http.StatusConflict:
		return withCode(&apperrors.AppError{Code: "CONFLICT", Status: status, Err: apperrors.ErrConflict})
	case status == http.StatusServiceUnavailable:
		return withCode(&apperrors.AppError{Code: "SERVICE_UNAVAILABLE", Status: status, Err: apperrors.ErrServiceUnavail})
	case status >= 500:
		return withCode(&apperrors.AppError{Code: "INTERNAL_ERROR", Status: status, Err: apperrors.ErrInternal})
	default:
		return withCode(&apperrors.AppError{Code: "UNEXPECTED_RESPONSE", Status: status, Err: apperrors.ErrUnexpected})
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
