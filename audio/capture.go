package audio

import (
	"context"
	"io"
	"sync"

	"github.com/kbukum/voicebridge/audiodev"
	"github.com/kbukum/voicebridge/errors"
	"github.com/kbukum/voicebridge/logger"
)

// DefaultChunkSize is the capture buffer size in samples per chunk.
const DefaultChunkSize = 4096

// State is the capture lifecycle state.
type State string

const (
	// StateIdle means no capture loop is running.
	StateIdle State = "idle"
	// StateCapturing means the capture loop is streaming from a device.
	StateCapturing State = "capturing"
)

// StateChange is published to subscribers when the capture state flips.
type StateChange struct {
	State    State
	DeviceID string
}

// CaptureConfig configures a Capturer.
type CaptureConfig struct {
	// Format is the PCM format requested from the device.
	Format Format `json:"format" mapstructure:"format"`
	// ChunkSize is the number of samples per read.
	ChunkSize int `json:"chunk_size" mapstructure:"chunk_size" validate:"gt=0"`
	// VAD configures speech detection.
	VAD VADConfig `json:"vad" mapstructure:"vad"`
}

// DefaultCaptureConfig returns capture defaults.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Format:    DefaultFormat(),
		ChunkSize: DefaultChunkSize,
		VAD:       DefaultVADConfig(),
	}
}

// SegmentHandler receives assembled speech segments.
type SegmentHandler func(*Segment)

// ErrorHandler receives device errors raised inside the capture loop.
type ErrorHandler func(error)

// Option configures a Capturer.
type Option func(*Capturer)

// WithErrorHandler sets the in-loop error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Capturer) { c.onError = h }
}

// Capturer owns the capture loop and segment assembly for one input device.
type Capturer struct {
	enum    audiodev.Enumerator
	cfg     CaptureConfig
	log     *logger.Logger
	onError ErrorHandler

	mu        sync.Mutex
	capturing bool
	starting  bool
	deviceID  string
	stream    audiodev.Stream
	cancel    context.CancelFunc
	done      chan struct{}
	subs      []chan StateChange
}

// NewCapturer creates a Capturer that resolves devices through enum.
func NewCapturer(enum audiodev.Enumerator, cfg CaptureConfig, opts ...Option) *Capturer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Format.SampleRate == 0 {
		cfg.Format = DefaultFormat()
	}
	c := &Capturer{
		enum: enum,
		cfg:  cfg,
		log:  logger.Get("capture"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Subscribe returns a channel that receives capture state changes.
// The channel is buffered; slow subscribers drop events rather than
// blocking the capture loop.
func (c *Capturer) Subscribe() <-chan StateChange {
	ch := make(chan StateChange, 4)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// Capturing reports whether the capture loop is running.
func (c *Capturer) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}

// Start opens the named device and begins the capture loop. It fails with
// a DeviceUnavailable error if the device cannot be opened, and with
// AlreadyRunning if a loop is active.
func (c *Capturer) Start(ctx context.Context, deviceID string, onSegment SegmentHandler) error {
	// The starting flag guards the window while the device is opening,
	// so concurrent Start calls cannot both spawn a loop.
	c.mu.Lock()
	if c.capturing || c.starting {
		c.mu.Unlock()
		return errors.AlreadyRunning()
	}
	c.starting = true
	c.mu.Unlock()

	stream, err := c.enum.Open(ctx, deviceID)
	if err != nil {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
		return errors.DeviceUnavailable(deviceID).WithCause(err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.starting = false
	c.capturing = true
	c.deviceID = deviceID
	c.stream = stream
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.publish(StateChange{State: StateCapturing, DeviceID: deviceID})
	c.log.Info("capture started", map[string]interface{}{
		logger.FieldDeviceID: deviceID,
		"sample_rate":        c.cfg.Format.SampleRate,
		"chunk_size":         c.cfg.ChunkSize,
	})

	go c.loop(loopCtx, stream, deviceID, onSegment, done)
	return nil
}

// Stop halts the capture loop and releases the device. Calling Stop when
// not capturing is a no-op.
func (c *Capturer) Stop() {
	c.mu.Lock()
	if !c.capturing {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	done := c.done
	stream := c.stream
	deviceID := c.deviceID
	c.mu.Unlock()

	cancel()
	// Unblock a Read in flight. Streams must tolerate a second Close
	// from the loop's own teardown.
	if err := stream.Close(); err != nil {
		c.log.Warn("stream close failed", logger.ErrorFields("close", err))
	}
	<-done

	c.log.Info("capture stopped", map[string]interface{}{logger.FieldDeviceID: deviceID})
}

func (c *Capturer) loop(ctx context.Context, stream audiodev.Stream, deviceID string, onSegment SegmentHandler, done chan struct{}) {
	defer close(done)
	defer func() {
		_ = stream.Close()
		c.mu.Lock()
		c.capturing = false
		c.mu.Unlock()
		c.publish(StateChange{State: StateIdle, DeviceID: deviceID})
	}()

	detector := NewDetector(c.cfg.VAD)
	chunk := make([]int16, c.cfg.ChunkSize)

	var current []int16
	silenceRun := 0
	inSegment := false

	flush := func() {
		if !inSegment || len(current) == 0 {
			return
		}
		seg := NewSegment(current, c.cfg.Format, deviceID)
		current = nil
		inSegment = false
		silenceRun = 0
		if onSegment != nil {
			// Dispatch on its own goroutine so a slow consumer never
			// stalls the read loop and drops audio.
			go onSegment(seg)
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		default:
		}

		n, err := stream.Read(chunk)
		if err != nil {
			flush()
			if err == io.EOF || ctx.Err() != nil {
				return
			}
			c.log.Error("device read failed", logger.ErrorFields("read", err))
			if c.onError != nil {
				c.onError(errors.DeviceUnavailable(deviceID).WithCause(err))
			}
			return
		}
		if n == 0 {
			continue
		}

		samples := chunk[:n]
		if detector.IsSpeech(samples) {
			silenceRun = 0
			if !inSegment {
				inSegment = true
			}
			current = append(current, samples...)
			continue
		}

		if !inSegment {
			continue
		}

		// Keep hangover silence in the segment so trailing phonemes
		// survive; close once the run exceeds the configured count.
		silenceRun++
		current = append(current, samples...)
		if silenceRun >= detector.Hangover() {
			flush()
		}
	}
}

func (c *Capturer) publish(change StateChange) {
	c.mu.Lock()
	subs := make([]chan StateChange, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- change:
		default:
		}
	}
}
