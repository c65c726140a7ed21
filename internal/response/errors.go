package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrMissingInput   ErrCode = "MISSING_INPUT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"

	// ─── Quiz ──────────────────────────────────────────────────────────
	ErrQuestionNotFound  ErrCode = "QUESTION_NOT_FOUND"
	ErrKindMismatch      ErrCode = "KIND_MISMATCH"
	ErrIndexOutOfRange   ErrCode = "INDEX_OUT_OF_RANGE"
	ErrQuizIncomplete    ErrCode = "QUIZ_INCOMPLETE"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"
	ErrUnsupportedExport ErrCode = "UNSUPPORTED_EXPORT_FORMAT"
	ErrExportUnavailable ErrCode = "EXPORT_UNAVAILABLE"

	// ─── Generation ────────────────────────────────────────────────────
	ErrInvalidAPIKey      ErrCode = "INVALID_API_KEY"
	ErrRateLimited        ErrCode = "RATE_LIMITED"
	ErrServerUnresponsive ErrCode = "SERVER_UNRESPONSIVE"
	ErrGenerationFailed   ErrCode = "GENERATION_FAILED"
	ErrGenerationAborted  ErrCode = "GENERATION_ABORTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrMissingInput:
		return "Please enter both a topic and an API key."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrSessionNotFound:
		return "Quiz session not found or expired."

	// ─── Quiz ──────────────────────────────────────────────────────────
	case ErrQuestionNotFound:
		return "Question not found in this session."
	case ErrKindMismatch:
		return "This action does not apply to this question type."
	case ErrIndexOutOfRange:
		return "Index out of range."
	case ErrQuizIncomplete:
		return "Answer every question before reviewing."
	case ErrNoQuestions:
		return "This session has no questions yet."
	case ErrUnsupportedExport:
		return "Unsupported export format."
	case ErrExportUnavailable:
		return "PDF export is unavailable: no usable font is configured."

	// ─── Generation ────────────────────────────────────────────────────
	case ErrInvalidAPIKey:
		return "The API key was rejected. Please check it and try again."
	case ErrRateLimited:
		return "Too many requests to the quiz generator. Please wait a moment."
	case ErrServerUnresponsive:
		return "The quiz generator is not responding. Please try again."
	case ErrGenerationFailed:
		return "Failed to generate the quiz."
	case ErrGenerationAborted:
		return "Generation was superseded by a newer request."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
