package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/kbukum/voicebridge/audiodev"
	"github.com/kbukum/voicebridge/errors"
)

// Enumerator is an in-memory audio device source. Devices map ids to
// the sample chunks their streams will produce; unknown ids fail with
// DeviceUnavailable.
type Enumerator struct {
	mu      sync.Mutex
	streams map[string][][]int16
}

// NewEnumerator creates an enumerator with no devices.
func NewEnumerator() *Enumerator {
	return &Enumerator{streams: make(map[string][][]int16)}
}

// AddDevice registers a device whose stream yields the given chunks in
// order, then blocks until closed.
func (e *Enumerator) AddDevice(id string, chunks ...[]int16) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.streams[id] = chunks
}

func (e *Enumerator) Devices(ctx context.Context, kind audiodev.Kind) ([]audiodev.Device, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]audiodev.Device, 0, len(e.streams))
	for id := range e.streams {
		out = append(out, audiodev.Device{ID: id, Name: id, Type: kind})
	}
	return out, nil
}

func (e *Enumerator) Open(ctx context.Context, deviceID string) (audiodev.Stream, error) {
	e.mu.Lock()
	chunks, ok := e.streams[deviceID]
	e.mu.Unlock()
	if !ok {
		return nil, errors.DeviceUnavailable(deviceID)
	}
	return &scriptedStream{chunks: chunks, closed: make(chan struct{})}, nil
}

// scriptedStream plays back its chunks, then blocks until Close, which
// mirrors a live microphone that has gone quiet.
type scriptedStream struct {
	mu     sync.Mutex
	chunks [][]int16
	next   int
	closed chan struct{}
	once   sync.Once
}

func (s *scriptedStream) Read(buf []int16) (int, error) {
	s.mu.Lock()
	if s.next < len(s.chunks) {
		chunk := s.chunks[s.next]
		s.next++
		s.mu.Unlock()
		n := copy(buf, chunk)
		return n, nil
	}
	s.mu.Unlock()

	<-s.closed
	return 0, io.EOF
}

func (s *scriptedStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}
