package audio

// VADConfig configures voice-activity detection.
type VADConfig struct {
	// Enabled turns detection on. When false every chunk is treated as
	// speech, which suits push-to-talk style input.
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Threshold is the normalized RMS energy above which a chunk counts
	// as speech.
	Threshold float64 `json:"threshold" mapstructure:"threshold" validate:"gte=0,lte=1"`
	// HangoverChunks is how many consecutive silence chunks close an
	// open segment.
	HangoverChunks int `json:"hangover_chunks" mapstructure:"hangover_chunks" validate:"gte=1"`
}

// DefaultVADConfig returns detection defaults.
func DefaultVADConfig() VADConfig {
	return VADConfig{
		Enabled:        true,
		Threshold:      0.02,
		HangoverChunks: 3,
	}
}

// Detector classifies audio chunks as speech or silence by energy.
type Detector struct {
	cfg VADConfig
}

// NewDetector creates a detector from config.
func NewDetector(cfg VADConfig) *Detector {
	if cfg.HangoverChunks <= 0 {
		cfg.HangoverChunks = DefaultVADConfig().HangoverChunks
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultVADConfig().Threshold
	}
	return &Detector{cfg: cfg}
}

// IsSpeech reports whether the chunk's energy crosses the threshold.
// With detection disabled every chunk is speech.
func (d *Detector) IsSpeech(chunk []int16) bool {
	if !d.cfg.Enabled {
		return true
	}
	if len(chunk) == 0 {
		return false
	}
	return RMS(chunk) >= d.cfg.Threshold
}

// Hangover returns the configured silence-chunk count that closes a segment.
func (d *Detector) Hangover() int {
	return d.cfg.HangoverChunks
}
