package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/voicebridge/audio"
	"github.com/kbukum/voicebridge/errors"
	"github.com/kbukum/voicebridge/testutil"
)

func chunkOf(value int16, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// End-to-end: a scripted device produces speech then silence; the
// capturer assembles one segment, the pipeline translates it, and the
// sink receives synthesized audio.
func TestCaptureToOutput(t *testing.T) {
	cfg := testConfig()
	cfg.InputDeviceID = "mic-1"
	cfg.Capture.VAD.Enabled = true

	enum := testutil.NewEnumerator()
	speech := chunkOf(2000, cfg.Capture.ChunkSize)
	silence := chunkOf(0, cfg.Capture.ChunkSize)
	enum.AddDevice("mic-1", speech, speech, silence, silence, silence)

	h := newHarness(t, cfg, WithCapturer(audio.NewCapturer(enum, cfg.Capture)))

	if err := h.orch.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.orch.Stop()

	deadline := time.After(2 * time.Second)
	for len(h.sink.Emitted()) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for emitted audio")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if h.transcriber.Calls() != 1 {
		t.Errorf("transcriber calls = %d, want 1", h.transcriber.Calls())
	}
	st := h.orch.Status()
	if st.SegmentsProcessed != 1 || st.TranslationsSucceeded != 1 {
		t.Errorf("status = %+v", st)
	}
}

func TestStartFailsOnUnknownDevice(t *testing.T) {
	cfg := testConfig()
	cfg.InputDeviceID = "missing"

	h := newHarness(t, cfg, WithCapturer(audio.NewCapturer(testutil.NewEnumerator(), cfg.Capture)))

	err := h.orch.Start(context.Background())
	if !errors.Is(err, errors.ErrCodeDeviceUnavailable) {
		t.Fatalf("Start() error = %v, want DeviceUnavailable", err)
	}
	// A failed start must roll all the way back to Idle so a later
	// start with a fixed device can succeed.
	if h.orch.State() != StateIdle {
		t.Errorf("state = %q, want idle", h.orch.State())
	}
	if h.orch.Status().Running {
		t.Error("failed start must not leave a running session")
	}
}
