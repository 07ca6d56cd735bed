package audiodev

import "context"

// Kind distinguishes input (capture) from output (playback) devices.
type Kind string

const (
	// KindInput identifies capture devices (microphones).
	KindInput Kind = "input"
	// KindOutput identifies playback devices (including virtual devices).
	KindOutput Kind = "output"
)

// Device describes an audio device known to the host.
type Device struct {
	// ID is the stable device identifier.
	ID string `json:"id"`
	// Name is the human-readable device name.
	Name string `json:"name"`
	// Type is the device kind.
	Type Kind `json:"type"`
}

// Stream is an open sample stream from a capture device. Read fills buf
// with 16-bit signed PCM samples and returns the number of samples written.
// Read blocks until samples are available or the stream is closed. Close
// must unblock a pending Read and must be safe to call more than once.
type Stream interface {
	Read(buf []int16) (int, error)
	Close() error
}

// Enumerator resolves device ids to live streams.
type Enumerator interface {
	// Devices lists the devices of the given kind.
	Devices(ctx context.Context, kind Kind) ([]Device, error)
	// Open opens a capture stream on the named device.
	Open(ctx context.Context, deviceID string) (Stream, error)
}
