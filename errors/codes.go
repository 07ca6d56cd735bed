package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Capture errors
const (
	// ErrCodeDeviceUnavailable indicates the audio input device could not be opened.
	ErrCodeDeviceUnavailable ErrorCode = "DEVICE_UNAVAILABLE"
	// ErrCodeEmptyAudio indicates a zero-length or silent audio segment was submitted.
	ErrCodeEmptyAudio ErrorCode = "EMPTY_AUDIO"
)

// Stage errors (external collaborators)
const (
	// ErrCodeTranscription indicates the speech-to-text call failed.
	ErrCodeTranscription ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeTranslation indicates a translation attempt failed.
	ErrCodeTranslation ErrorCode = "TRANSLATION_FAILED"
	// ErrCodeSynthesis indicates the speech synthesis call failed.
	ErrCodeSynthesis ErrorCode = "SYNTHESIS_FAILED"
	// ErrCodeOutput indicates the audio output routing call failed. Non-fatal.
	ErrCodeOutput ErrorCode = "OUTPUT_FAILED"
	// ErrCodeTimeout indicates an external call exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Lifecycle errors
const (
	// ErrCodeConfiguration indicates a configuration field failed validation.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_INVALID"
	// ErrCodeAlreadyRunning indicates start was called on a running session.
	ErrCodeAlreadyRunning ErrorCode = "ALREADY_RUNNING"
	// ErrCodeNotRunning indicates the operation requires a running session.
	ErrCodeNotRunning ErrorCode = "NOT_RUNNING"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeDeviceUnavailable: true,
	ErrCodeTranscription:     true,
	ErrCodeTranslation:       true,
	ErrCodeSynthesis:         true,
	ErrCodeOutput:            true,
	ErrCodeTimeout:           true,
	ErrCodeEmptyAudio:        false,
	ErrCodeConfiguration:     false,
	ErrCodeAlreadyRunning:    false,
	ErrCodeNotRunning:        false,
	ErrCodeInternal:          false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
