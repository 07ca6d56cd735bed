// Package logger provides structured logging for voicebridge components
// built on zerolog. It supports console and JSON output, a named-logger
// registry so each pipeline component can be tuned independently, and
// field helpers for the identifiers that flow through the translation
// pipeline (session, segment, conversation, service).
package logger
