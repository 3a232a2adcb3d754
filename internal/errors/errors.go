// Package errors provides custom error types for the Nuvolari API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"fmt"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithMessagef creates a new AppError with a formatted custom message.
func WithMessagef(sentinel *AppError, format string, args ...any) *AppError {
	return WithMessage(sentinel, fmt.Sprintf(format, args...))
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Entity lookup errors.
var (
	ErrTokenNotFound    = &AppError{Code: "TOKEN_NOT_FOUND", Message: "Token not found", StatusCode: http.StatusNotFound}
	ErrPoolNotFound     = &AppError{Code: "POOL_NOT_FOUND", Message: "Pool not found", StatusCode: http.StatusNotFound}
	ErrProtocolNotFound = &AppError{Code: "PROTOCOL_NOT_FOUND", Message: "Protocol not found", StatusCode: http.StatusNotFound}
	ErrChainNotFound    = &AppError{Code: "CHAIN_NOT_FOUND", Message: "Chain not found", StatusCode: http.StatusNotFound}
)

// Insight lifecycle errors.
var (
	ErrInsightNotFound      = &AppError{Code: "INSIGHT_NOT_FOUND", Message: "Insight not found", StatusCode: http.StatusNotFound}
	ErrPendingInsightsExist = &AppError{Code: "PENDING_INSIGHTS_EXIST", Message: "User already has pending insights", StatusCode: http.StatusConflict}
	ErrInvalidInsightType   = &AppError{Code: "INVALID_INSIGHT_TYPE", Message: "Unsupported insight type", StatusCode: http.StatusBadRequest}
	ErrInsightNotPending    = &AppError{Code: "INSIGHT_NOT_PENDING", Message: "Insight is not in a pending state", StatusCode: http.StatusConflict}
)

// Upstream and pipeline errors.
var (
	ErrUpstreamUnavailable = &AppError{Code: "UPSTREAM_UNAVAILABLE", Message: "An upstream data provider is unavailable", StatusCode: http.StatusBadGateway}
	ErrEngineReplyInvalid  = &AppError{Code: "ENGINE_REPLY_INVALID", Message: "Recommendation engine returned an unparseable reply", StatusCode: http.StatusBadGateway}
)
