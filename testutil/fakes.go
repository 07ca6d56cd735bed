package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/voicebridge/synthesis"
	"github.com/kbukum/voicebridge/transcription"
	"github.com/kbukum/voicebridge/translation"
)

// Transcriber is a scripted transcription provider.
type Transcriber struct {
	// ServiceName is returned by Name; defaults to "whisper".
	ServiceName string
	// Text is the transcription returned on success.
	Text string
	// Err, when set, fails every call.
	Err error
	// Delay, when set, is invoked before responding (for timeout tests).
	Delay func(ctx context.Context) error

	calls atomic.Int64
}

func (f *Transcriber) Name() string {
	if f.ServiceName == "" {
		return "whisper"
	}
	return f.ServiceName
}

func (f *Transcriber) IsAvailable(ctx context.Context) bool { return true }

func (f *Transcriber) Calls() int { return int(f.calls.Load()) }

func (f *Transcriber) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	f.calls.Add(1)
	if f.Delay != nil {
		if err := f.Delay(ctx); err != nil {
			return nil, err
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return &transcription.Result{
		Text:          f.Text,
		Language:      req.Language,
		Confidence:    0.95,
		IsFinal:       true,
		Service:       f.Name(),
		CorrelationID: req.CorrelationID,
	}, nil
}

// Translator is a scripted translation provider.
type Translator struct {
	// ServiceName is returned by Name; defaults to "deepl".
	ServiceName string
	// Translated is the output text returned on success.
	Translated string
	// Err, when set, fails every call.
	Err error
	// FailFirst fails this many initial calls before succeeding.
	FailFirst int
	// Delay, when set, is invoked before responding.
	Delay func(ctx context.Context) error

	mu       sync.Mutex
	calls    int
	requests []translation.Request
}

func (f *Translator) Name() string {
	if f.ServiceName == "" {
		return "deepl"
	}
	return f.ServiceName
}

func (f *Translator) IsAvailable(ctx context.Context) bool { return true }

// Calls returns how many times Translate was invoked.
func (f *Translator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRequest returns the most recent request, or a zero value if none.
func (f *Translator) LastRequest() translation.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return translation.Request{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *Translator) Translate(ctx context.Context, req translation.Request) (*translation.Result, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Delay != nil {
		if err := f.Delay(ctx); err != nil {
			return nil, err
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	if call <= f.FailFirst {
		return nil, fmt.Errorf("%s transient failure", f.Name())
	}
	return &translation.Result{
		TranslatedText: f.Translated,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Confidence:     0.9,
		Service:        f.Name(),
	}, nil
}

// Synthesizer is a scripted synthesis provider.
type Synthesizer struct {
	// ServiceName is returned by Name; defaults to "elevenlabs".
	ServiceName string
	// Err, when set, fails every call.
	Err error

	calls atomic.Int64
}

func (f *Synthesizer) Name() string {
	if f.ServiceName == "" {
		return "elevenlabs"
	}
	return f.ServiceName
}

func (f *Synthesizer) IsAvailable(ctx context.Context) bool { return true }

func (f *Synthesizer) Calls() int { return int(f.calls.Load()) }

func (f *Synthesizer) Synthesize(ctx context.Context, req synthesis.Request) (*synthesis.Audio, error) {
	f.calls.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	return &synthesis.Audio{
		Samples:    make([]int16, 1600),
		SampleRate: 16000,
		Channels:   1,
		Service:    f.Name(),
	}, nil
}

// Sink records every emitted audio buffer.
type Sink struct {
	// Err, when set, fails every Emit.
	Err error

	mu      sync.Mutex
	emitted []*synthesis.Audio
}

func (s *Sink) Name() string { return "recording" }

func (s *Sink) Emit(ctx context.Context, a *synthesis.Audio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.emitted = append(s.emitted, a)
	return nil
}

// Emitted returns a copy of everything emitted so far.
func (s *Sink) Emitted() []*synthesis.Audio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*synthesis.Audio(nil), s.emitted...)
}
