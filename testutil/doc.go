// Package testutil provides scripted fake collaborators for pipeline
// tests: transcription, translation, and synthesis providers with
// programmable responses, a recording output sink, and an in-memory
// audio device.
//
// All fakes count their invocations so tests can assert how many
// external calls the pipeline made.
package testutil
