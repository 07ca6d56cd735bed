// Package audio implements microphone capture and voice-activity detection.
//
// A Capturer owns one long-lived capture loop: it reads fixed-size chunks
// from an audiodev.Stream, classifies each chunk as speech or silence with
// an energy detector, and assembles consecutive speech chunks into Segments.
// A segment closes only after a configurable number of consecutive silence
// chunks (the hangover), which keeps trailing phonemes from being clipped.
// Segments are handed to the registered callback on their own goroutine so
// the capture loop never blocks on downstream processing.
//
// Device errors inside the loop are reported through the error handler, not
// returned from Start, since capture runs independently of any call site.
package audio
