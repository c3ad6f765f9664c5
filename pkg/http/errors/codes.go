package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"
	ErrCodeFileTooLarge     = "file_too_large"
	ErrCodeFileTooShort     = "file_too_short"
	ErrCodeTooManyFiles     = "too_many_files"
	ErrCodeNoFiles          = "no_files"
	ErrCodeInvalidFileType  = "invalid_file_type"

	// Resource errors
	ErrCodeNotFound         = "not_found"
	ErrCodeSessionNotFound  = "session_not_found"
	ErrCodeQuestionNotFound = "question_not_found"

	// Business logic errors
	ErrCodeSessionCreationFailed = "session_creation_failed"
	ErrCodeGenerationFailed      = "generation_failed"
	ErrCodeAnswerFailed          = "answer_failed"
	ErrCodeProgressFailed        = "progress_failed"
	ErrCodePoolStatsFailed       = "pool_stats_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
