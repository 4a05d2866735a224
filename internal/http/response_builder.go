// Package http exposes the recurring engine as a JSON API.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps the error taxonomy onto status codes and error bodies.

package http

import (
	"encoding/json"
	"net/http"

	ierr "liquidity/internal/errors"
	"liquidity/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"failed to encode response"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// ErrorBody is the body of every non-2xx response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a taxonomy code and a client-facing message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse builds the error body for err. Server-side failures never
// leak their internal message.
func ErrorResponse(err error) *JSONResponseBuilder {
	status := ierr.HTTPStatusFromErr(err)
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	code := ierr.Code(err)
	message := ierr.Hint(err)
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	} else if message == "" {
		message = err.Error()
	}

	return NewJSONResponse().
		Status(status).
		Body(ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// writeError logs err at a level matching its status and writes the error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse(err)
	logger := log.FromContext(r.Context())
	if resp.statusCode >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldErrorCode, ierr.Code(err))
	} else {
		logger.WarnContext(r.Context(), "Request rejected", log.FieldError, err, log.FieldErrorCode, ierr.Code(err))
	}
	resp.Write(w)
}

// NotFoundResponse is returned for unknown routes.
func NotFoundResponse() *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusNotFound).
		Body(ErrorBody{Error: ErrorDetail{Code: ierr.ErrCodeNotFound, Message: "route not found"}})
}

// MethodNotAllowedResponse is returned when a route exists for another method.
func MethodNotAllowedResponse() *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusMethodNotAllowed).
		Body(ErrorBody{Error: ErrorDetail{Code: "method_not_allowed", Message: "method not allowed"}})
}

// TooManyRequestsResponse is returned by the rate limiter.
func TooManyRequestsResponse() *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Body(ErrorBody{Error: ErrorDetail{Code: "rate_limited", Message: "rate limit exceeded, please try again later"}})
}
