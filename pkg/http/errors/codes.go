package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Upstream source errors
	ErrCodeFetchFailed   = "fetch_failed"
	ErrCodeUpstreamError = "upstream_error"

	// Storage errors
	ErrCodeStoreUnavailable = "store_unavailable"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
