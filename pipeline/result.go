package pipeline

import (
	"time"

	"github.com/kbukum/voicebridge/quality"
	"github.com/kbukum/voicebridge/synthesis"
	"github.com/kbukum/voicebridge/transcription"
	"github.com/kbukum/voicebridge/translation"
)

// Stage names how far a segment got through the pipeline.
type Stage string

const (
	StageValidation    Stage = "validation"
	StageTranscription Stage = "transcription"
	StageTranslation   Stage = "translation"
	StageSynthesis     Stage = "synthesis"
	StageOutput        Stage = "output"
	StageComplete      Stage = "complete"
)

// Result is the structured per-segment outcome. Failures are carried
// here rather than returned as errors so partial data survives: a
// synthesis failure still reports the successful transcription and
// translation.
type Result struct {
	// Success is true only when the full pipeline completed. A segment
	// with SynthesisFailed set still carries a usable translation.
	Success bool `json:"success"`
	// Stage is how far processing got: the failing stage on failure,
	// StageComplete on success.
	Stage Stage `json:"stage"`
	// Err is the failure at Stage, nil on success.
	Err error `json:"-"`

	// SynthesisFailed marks an audio-only failure: translation
	// succeeded but no audio could be produced.
	SynthesisFailed bool `json:"synthesis_failed,omitempty"`
	// CacheHit reports whether the translation came from the cache.
	CacheHit bool `json:"cache_hit,omitempty"`

	Transcription *transcription.Result `json:"transcription,omitempty"`
	Translation   *translation.Result   `json:"translation,omitempty"`
	Assessment    *quality.Assessment   `json:"assessment,omitempty"`
	Audio         *synthesis.Audio      `json:"-"`

	// Latency is the end-to-end processing time for the segment.
	Latency time.Duration `json:"latency"`
}

func failedAt(stage Stage, err error) *Result {
	return &Result{Stage: stage, Err: err}
}
