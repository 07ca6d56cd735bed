// Package pipeline contains the orchestrator that turns captured speech
// segments into translated audio: transcribe, translate (cache-checked,
// context-enriched, fallback-capable), assess, synthesize, emit.
//
// Lifecycle is a small state machine (Idle → Starting → Running →
// Stopping → Idle) gating start and stop; segment processing within
// Running is concurrent and independent. Per-segment failures come back
// as a structured Result rather than an error, so a synthesis failure
// still carries the successful translation.
package pipeline
