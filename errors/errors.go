package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// CodeOf extracts the ErrorCode from an error chain. Returns ErrCodeInternal
// for non-AppError errors and the empty code for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in the chain carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable reports whether the error is safe to retry.
func IsRetryable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// --- Pipeline Error Constructors ---

// DeviceUnavailable creates an error for an input device that cannot be opened.
func DeviceUnavailable(deviceID string) *AppError {
	return &AppError{
		Code: ErrCodeDeviceUnavailable, Message: fmt.Sprintf("Audio device %q is unavailable.", deviceID),
		Retryable: true,
		Details:   map[string]any{"device_id": deviceID},
	}
}

// EmptyAudio creates an error for a zero-length audio segment.
func EmptyAudio() *AppError {
	return &AppError{
		Code: ErrCodeEmptyAudio, Message: "Audio segment contains no samples.",
		Retryable: false,
	}
}

// Transcription creates an error for a failed speech-to-text call.
func Transcription(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscription, Message: fmt.Sprintf("Transcription via %s failed.", service),
		Retryable: true, Cause: cause,
		Details: map[string]any{"service": service},
	}
}

// Translation creates an error for a failed translation attempt against one service.
func Translation(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranslation, Message: fmt.Sprintf("Translation via %s failed.", service),
		Retryable: true, Cause: cause,
		Details: map[string]any{"service": service},
	}
}

// TranslationExhausted creates an error for a fallback walk that ran out of services.
func TranslationExhausted(services []string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranslation, Message: "All translation services failed.",
		Retryable: true, Cause: cause,
		Details: map[string]any{"services": services},
	}
}

// Synthesis creates an error for a failed speech synthesis call.
func Synthesis(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSynthesis, Message: fmt.Sprintf("Speech synthesis via %s failed.", service),
		Retryable: true, Cause: cause,
		Details: map[string]any{"service": service},
	}
}

// Output creates an error for a failed audio output routing call.
func Output(cause error) *AppError {
	return &AppError{
		Code: ErrCodeOutput, Message: "Audio output routing failed.",
		Retryable: true, Cause: cause,
	}
}

// Timeout creates an error for an external call that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("The %s call exceeded its deadline.", operation),
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// Configuration creates an error for an invalid configuration field.
func Configuration(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeConfiguration, Message: fmt.Sprintf("Invalid configuration: %s", reason),
		Retryable: false, Details: details,
	}
}

// AlreadyRunning creates an error for a start call on a running session.
func AlreadyRunning() *AppError {
	return &AppError{
		Code: ErrCodeAlreadyRunning, Message: "A pipeline session is already running.",
		Retryable: false,
	}
}

// NotRunning creates an error for an operation that requires a live session.
func NotRunning(operation string) *AppError {
	return &AppError{
		Code: ErrCodeNotRunning, Message: fmt.Sprintf("Cannot %s: no pipeline session is running.", operation),
		Retryable: false,
		Details:   map[string]any{"operation": operation},
	}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}

// Validation creates a configuration error without a specific field.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeConfiguration, Message: message,
		Retryable: false,
	}
}
