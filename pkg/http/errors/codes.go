package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Arena errors
	ErrCodeGenerationFailed = "generation_failed"
	ErrCodeRoundFailed      = "round_failed"
	ErrCodeNoModels         = "no_models_available"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeUpstreamError = "upstream_error"
)
