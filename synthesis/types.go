package synthesis

import "time"

// VoiceOptions selects the synthesized voice.
type VoiceOptions struct {
	// Voice is the backend-specific voice identifier.
	Voice string `json:"voice,omitempty"`
	// SpeakingRate scales speech speed; 1.0 is normal.
	SpeakingRate float64 `json:"speaking_rate,omitempty"`
	// Pitch shifts the voice pitch in semitones.
	Pitch float64 `json:"pitch,omitempty"`
}

// Request holds parameters for a synthesis call.
type Request struct {
	// Text is the text to speak.
	Text string `json:"text"`
	// Language is the language of Text (e.g. "es").
	Language string `json:"language"`
	// Voice selects the synthesized voice.
	Voice VoiceOptions `json:"voice"`
	// CorrelationID ties the request back to the originating segment.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Audio is a synthesized audio buffer.
type Audio struct {
	// Samples is 16-bit signed PCM audio.
	Samples []int16 `json:"-"`
	// SampleRate is the sample rate in Hz.
	SampleRate int `json:"sample_rate"`
	// Channels is the channel count.
	Channels int `json:"channels"`
	// Service is the backend that produced the audio.
	Service string `json:"service,omitempty"`
	// Latency is how long the backend call took.
	Latency time.Duration `json:"latency,omitempty"`
}
