// Package errors provides standardized error handling for the assessment pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Startup-only: malformed task plans or criteria never reach request time.
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	// Request-level, terminal.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeTaskNotFound     ErrorCode = "TASK_NOT_FOUND"
	ErrCodeAudioUnsupported ErrorCode = "AUDIO_UNSUPPORTED"
	ErrCodeAudioTooLarge    ErrorCode = "AUDIO_TOO_LARGE"

	// Acoustic engine failures. Terminal only when the resolved plan carries
	// acoustic criteria; otherwise the request degrades.
	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrCodeExtractionTimeout ErrorCode = "EXTRACTION_TIMEOUT"

	// Per-backend, non-fatal: captured as a failed transcription variant.
	ErrCodeTranscriptionBackendFailed ErrorCode = "TRANSCRIPTION_BACKEND_FAILED"
	ErrCodeTranscriptionTimeout       ErrorCode = "TRANSCRIPTION_TIMEOUT"

	// Criterion-group-level, non-fatal: judged criteria degrade to placeholders.
	ErrCodeJudgmentFailed      ErrorCode = "JUDGMENT_FAILED"
	ErrCodeJudgmentTimeout     ErrorCode = "JUDGMENT_TIMEOUT"
	ErrCodeJudgmentParseFailed ErrorCode = "JUDGMENT_PARSE_FAILED"

	// Defensive: clamped and logged, never surfaced to the caller.
	ErrCodeScoreOutOfRange ErrorCode = "SCORE_OUT_OF_RANGE"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Normalize ensures we always have a StandardError to report.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the error code, or INTERNAL_ERROR for plain errors.
func CodeOf(err error) ErrorCode {
	return Normalize(err).Code
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// HTTPStatus maps an error code to the status the API surface should return.
// Pipeline degradation never reaches this mapping; only request-terminal
// failures do.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeTaskNotFound:
		return http.StatusNotFound
	case ErrCodeValidationFailed, ErrCodeAudioUnsupported:
		return http.StatusBadRequest
	case ErrCodeAudioTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeExtractionTimeout, ErrCodeJudgmentTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeExtractionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns how many client-side retries are sensible for a code.
// Retries are a caller policy; the pipeline itself never retries an external
// call (same audio bytes produce the same answer, so retrying is idempotent
// but belongs outside the core).
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExtractionTimeout, ErrCodeJudgmentTimeout, ErrCodeTranscriptionTimeout, ErrCodeCacheUnavailable:
		return 1
	default:
		return 0
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigurationError creates a fatal startup configuration error.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Invalid assessment configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskNotFoundError creates a non-retryable unknown-task error.
func NewTaskNotFoundError(taskID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskNotFound,
		Message:   "Unknown task identifier",
		Details:   fmt.Sprintf("taskId: %s", taskID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAudioUnsupportedError creates a non-retryable audio format error.
func NewAudioUnsupportedError(filename string, supported []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAudioUnsupported,
		Message:   "Unsupported audio format",
		Details:   fmt.Sprintf("file: %s, supported: %v", filename, supported),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError creates an acoustic engine failure.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Acoustic feature extraction failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionTimeoutError creates an acoustic engine timeout.
func NewExtractionTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionTimeout,
		Message:   "Acoustic feature extraction timed out",
		Details:   fmt.Sprintf("timeout: %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTranscriptionBackendError wraps a single STT backend failure. The fanout
// converts it into a failed variant; it never aborts the group.
func NewTranscriptionBackendError(backendID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptionBackendFailed,
		Message:   "Transcription backend failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"backend": backendID},
		Timestamp: time.Now().UTC(),
	}
}

// NewJudgmentFailedError creates a judge call failure.
func NewJudgmentFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeJudgmentFailed,
		Message:   "Judge scoring call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewJudgmentTimeoutError creates a judge timeout.
func NewJudgmentTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeJudgmentTimeout,
		Message:   "Judge scoring call timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewJudgmentParseError creates a judge response validation failure.
func NewJudgmentParseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJudgmentParseFailed,
		Message:   "Judge response failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
