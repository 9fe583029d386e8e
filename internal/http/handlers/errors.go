// Package handlers defines the error codes returned in the error envelope.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Generic codes mirror the HTTP status, domain codes name
// the failing operation.
//
// Example:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "email already registered"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodePayloadTooLarge  = "payload_too_large"
	ErrCodeNotImplemented   = "not_implemented"
	ErrCodeTimeout          = "timeout"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeGenerationFailed = "generation_failed"
	ErrCodeLLMUnavailable   = "llm_unavailable"
)
