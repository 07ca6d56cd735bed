package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// Samples is the raw audio to transcribe, 16-bit signed PCM.
	Samples []int16 `json:"-"`
	// SampleRate is the sample rate of the audio in Hz.
	SampleRate int `json:"sample_rate"`
	// Channels is the channel count of the audio.
	Channels int `json:"channels"`
	// Language is the expected language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
	// Model is the transcription model to use, if the backend supports several.
	Model string `json:"model,omitempty"`
	// CorrelationID ties the request back to the originating speech segment.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Result holds the outcome of a transcription call.
type Result struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Language is the detected or declared language.
	Language string `json:"language,omitempty"`
	// Confidence is the backend's confidence score in [0,1].
	Confidence float64 `json:"confidence,omitempty"`
	// IsFinal reports whether the backend considers this a final hypothesis.
	IsFinal bool `json:"is_final"`
	// Service is the backend that produced the result.
	Service string `json:"service,omitempty"`
	// CorrelationID echoes the request correlation id.
	CorrelationID string `json:"correlation_id,omitempty"`
}
