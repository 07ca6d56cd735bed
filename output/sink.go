package output

import (
	"context"

	"github.com/kbukum/voicebridge/synthesis"
)

// Sink receives synthesized audio for playback into a virtual device.
type Sink interface {
	// Name returns the sink's identifier for logging.
	Name() string
	// Emit plays the audio buffer. Failures are logged by the caller and
	// never fail the overall segment result.
	Emit(ctx context.Context, audio *synthesis.Audio) error
}

// Discard is a Sink that drops all audio. Useful for text-only sessions
// and tests.
type Discard struct{}

func (Discard) Name() string { return "discard" }

func (Discard) Emit(context.Context, *synthesis.Audio) error { return nil }
