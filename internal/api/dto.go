package api

import (
	"time"

	"txn-classifier/internal/domain"
)

// APIError represents a structured error response.
// All error responses from the API use this format for consistency.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeInvalidArgument = "invalid_argument"
	ErrCodeNotConfigured   = "not_configured"
	ErrCodeReadOnly        = "read_only"
	ErrCodeInternalError   = "internal_error"
)

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code, message string) APIError {
	return APIError{Code: code, Message: message}
}

// InternalError creates an internal server error response.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// ClassifyRequest is the body of POST /api/v1/classify. A bare JSON array
// is accepted as shorthand for {"transactions": [...]}.
type ClassifyRequest struct {
	Transactions         domain.RawBatch  `json:"transactions"`
	Overrides            domain.Overrides `json:"overrides"`
	ProvisionalOverrides domain.Overrides `json:"provisional_overrides"`
}

// TagRequest is the body of PUT /api/v1/overrides/:id.
type TagRequest struct {
	Type string `json:"type"`
}

// TagResponse echoes the stored override.
type TagResponse struct {
	TransactionID string      `json:"transaction_id"`
	Type          domain.Type `json:"type"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
