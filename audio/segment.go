package audio

import (
	"time"

	"github.com/google/uuid"
)

// Segment is a contiguous span of captured audio judged to contain one
// utterance, bounded by VAD start/end events.
type Segment struct {
	// ID uniquely identifies the segment for correlation across stages.
	ID string `json:"id"`
	// Samples is the 16-bit PCM sample buffer.
	Samples []int16 `json:"-"`
	// Format describes the sample buffer.
	Format Format `json:"format"`
	// CapturedAt is when the segment's first speech chunk was read.
	CapturedAt time.Time `json:"captured_at"`
	// DeviceID names the source device.
	DeviceID string `json:"device_id,omitempty"`
}

// NewSegment creates a segment with a fresh id, taking ownership of samples.
func NewSegment(samples []int16, format Format, deviceID string) *Segment {
	return &Segment{
		ID:         uuid.NewString(),
		Samples:    samples,
		Format:     format,
		CapturedAt: time.Now(),
		DeviceID:   deviceID,
	}
}

// Empty reports whether the segment holds no samples.
func (s *Segment) Empty() bool {
	return s == nil || len(s.Samples) == 0
}

// Duration returns the play time of the segment.
func (s *Segment) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.Format.Duration(len(s.Samples))
}
