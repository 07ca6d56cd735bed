package quality

import (
	"math/rand"

	"github.com/kbukum/voicebridge/logger"
)

// Sub-score weights. Accuracy dominates because literal accuracy is the
// strongest signal available without native-speaker review.
const (
	WeightAccuracy = 0.5
	WeightFluency  = 0.3
	WeightCultural = 0.2
)

// Sub-score offsets relative to the overall score. Accuracy tends slightly
// above overall, fluency and cultural slightly below.
const (
	offsetAccuracy = 0.03
	offsetFluency  = -0.02
	offsetCultural = -0.04
)

// Input describes one translation attempt to assess.
type Input struct {
	// Original is the source text.
	Original string
	// Translated is the candidate translation.
	Translated string
	// FromLanguage and ToLanguage name the language pair.
	FromLanguage string
	ToLanguage   string
	// Service names the backend that produced the candidate.
	Service string
	// Context is the conversation context supplied to the call, if any.
	Context string
	// DomainContext is the domain hint supplied to the call, if any.
	DomainContext string
}

// Assessment is the scored outcome. Overall is the weighted sum of the
// sub-scores; every score lies in [0,1].
type Assessment struct {
	Overall  float64 `json:"overall"`
	Accuracy float64 `json:"accuracy"`
	Fluency  float64 `json:"fluency"`
	Cultural float64 `json:"cultural"`
	Service  string  `json:"service"`
}

// Config configures the assessor.
type Config struct {
	// Baselines maps service name to its baseline score. Missing services
	// use DefaultBaseline. The values are configurable heuristics, not
	// measured accuracy.
	Baselines map[string]float64 `json:"baselines" mapstructure:"baselines"`
	// DefaultBaseline applies to unknown services.
	DefaultBaseline float64 `json:"default_baseline" mapstructure:"default_baseline"`
	// Jitter, when non-nil, adds a tiny random offset for tie-breaking.
	// Nil keeps the assessor fully deterministic.
	Jitter *rand.Rand `json:"-" mapstructure:"-"`
	// JitterSpan bounds the jitter magnitude. Only used when Jitter is set.
	JitterSpan float64 `json:"jitter_span" mapstructure:"jitter_span"`
}

// DefaultBaselines returns the shipped per-service baselines.
func DefaultBaselines() map[string]float64 {
	return map[string]float64{
		"deepl":  0.92,
		"gpt4o":  0.90,
		"google": 0.86,
		"azure":  0.84,
	}
}

// DefaultConfig returns a deterministic assessor configuration.
func DefaultConfig() Config {
	return Config{
		Baselines:       DefaultBaselines(),
		DefaultBaseline: 0.80,
		JitterSpan:      0.005,
	}
}

// Assessor scores translation attempts.
type Assessor struct {
	cfg Config
	log *logger.Logger
}

// NewAssessor creates an Assessor from config.
func NewAssessor(cfg Config) *Assessor {
	if cfg.Baselines == nil {
		cfg.Baselines = DefaultBaselines()
	}
	if cfg.DefaultBaseline <= 0 {
		cfg.DefaultBaseline = 0.80
	}
	return &Assessor{
		cfg: cfg,
		log: logger.Get("quality"),
	}
}

// Assess scores one translation attempt. Identical inputs produce identical
// scores unless a jitter source was configured.
func (a *Assessor) Assess(in Input) Assessment {
	overall := a.baseline(in.Service)

	// Context-aware calls tend to produce more coherent output.
	if in.Context != "" {
		overall += 0.02
	}
	if in.DomainContext != "" {
		overall += 0.01
	}

	// A missing or drastically shortened translation is a strong signal
	// something went wrong regardless of the service.
	if in.Translated == "" {
		overall -= 0.30
	} else if len(in.Original) >= 8 && len(in.Translated)*4 < len(in.Original) {
		overall -= 0.03
	}

	if a.cfg.Jitter != nil && a.cfg.JitterSpan > 0 {
		overall += (a.cfg.Jitter.Float64()*2 - 1) * a.cfg.JitterSpan
	}

	accuracy := clamp(overall + offsetAccuracy)
	fluency := clamp(overall + offsetFluency)
	cultural := clamp(overall + offsetCultural)

	return Assessment{
		Overall:  clamp(WeightAccuracy*accuracy + WeightFluency*fluency + WeightCultural*cultural),
		Accuracy: accuracy,
		Fluency:  fluency,
		Cultural: cultural,
		Service:  in.Service,
	}
}

func (a *Assessor) baseline(service string) float64 {
	if b, ok := a.cfg.Baselines[service]; ok {
		return b
	}
	return a.cfg.DefaultBaseline
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
