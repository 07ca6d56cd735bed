package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Format describes a PCM audio stream.
type Format struct {
	// SampleRate in Hz.
	SampleRate int `json:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`
	// Channels is the channel count.
	Channels int `json:"channels" mapstructure:"channels" validate:"gt=0"`
	// BitDepth is bits per sample. Only 16 is supported.
	BitDepth int `json:"bit_depth" mapstructure:"bit_depth" validate:"eq=16"`
}

// DefaultFormat returns the capture default: 16 kHz mono 16-bit.
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, BitDepth: 16}
}

// Duration returns the play time of n samples in this format.
func (f Format) Duration(n int) time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	frames := n / f.Channels
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// RMS computes the root-mean-square energy of the samples, normalized
// to [0,1] against the int16 range.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the largest absolute sample value, normalized to [0,1].
func Peak(samples []int16) float64 {
	var peak float64
	for _, s := range samples {
		v := math.Abs(float64(s)) / math.MaxInt16
		if v > peak {
			peak = v
		}
	}
	return peak
}

// BytesToSamples decodes little-endian 16-bit PCM bytes into samples.
// A trailing odd byte is ignored.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// SamplesToBytes encodes samples as little-endian 16-bit PCM bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}
