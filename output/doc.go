// Package output defines the audio output routing contract. The concrete
// implementation plays synthesized audio into a virtual device that
// third-party communication software consumes as a microphone; the pipeline
// treats emission as best-effort and never fails a segment on routing errors.
package output
