// Package provider implements the generic collaborator framework shared by
// all external service roles in the pipeline (transcription, translation,
// synthesis, output routing, device enumeration).
//
// Each role defines its own typed interface embedding Provider; this package
// supplies the pieces that are identical across roles: a named registry of
// factories and instances, selection strategies (ranked order for fallback
// walks, health-check first-available), a manager tying registry and
// selector together, and resilient execution with timeout, retry and
// circuit breaking around external calls.
package provider
