// Package errors provides structured error handling for the voicebridge
// pipeline. Errors carry a machine-readable code matching one stage or
// failure mode of the translation pipeline, a retryable classification
// used by fallback and retry logic, and an optional cause chain compatible
// with errors.Is/As from the standard library.
package errors
