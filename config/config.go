package config

import (
	"fmt"
	"time"

	"github.com/kbukum/voicebridge/audio"
	"github.com/kbukum/voicebridge/cache"
	"github.com/kbukum/voicebridge/conversation"
	"github.com/kbukum/voicebridge/errors"
	"github.com/kbukum/voicebridge/synthesis"
	"github.com/kbukum/voicebridge/transcription"
	"github.com/kbukum/voicebridge/translation"
	"github.com/kbukum/voicebridge/validation"
)

// KnownLanguages lists the language codes the pipeline accepts for either
// side of a translation pair.
var KnownLanguages = []string{
	"en", "es", "fr", "de", "it", "pt", "nl", "pl", "ru",
	"ja", "ko", "zh", "ar", "hi", "tr",
}

// IsKnownLanguage reports whether code is a recognized language code.
func IsKnownLanguage(code string) bool {
	for _, l := range KnownLanguages {
		if code == l {
			return true
		}
	}
	return false
}

// ServicesConfig holds the ranked service lists per pipeline stage.
// Order is significant: earlier entries are preferred, later entries are
// fallbacks.
type ServicesConfig struct {
	Transcription []string `json:"transcription" mapstructure:"transcription"`
	Translation   []string `json:"translation" mapstructure:"translation"`
	Synthesis     []string `json:"synthesis" mapstructure:"synthesis"`
}

// TranslationConfig holds request options applied to every translation.
type TranslationConfig struct {
	Formality          string `json:"formality" mapstructure:"formality"`
	PreserveFormatting bool   `json:"preserve_formatting" mapstructure:"preserve_formatting"`
	// DomainContext is an optional domain hint (e.g. "medical") passed
	// through to backends and the quality assessor.
	DomainContext string `json:"domain_context" mapstructure:"domain_context"`
}

// RedisConfig configures the optional Redis-backed cache store. When Addr
// is empty the in-memory cache is used.
type RedisConfig struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	Password  string `json:"password" mapstructure:"password"`
	DB        int    `json:"db" mapstructure:"db"`
	KeyPrefix string `json:"key_prefix" mapstructure:"key_prefix"`
}

// TimeoutsConfig bounds each external collaborator call. A timeout is
// treated like any other collaborator failure and triggers the same
// fallback path.
type TimeoutsConfig struct {
	Transcription time.Duration `json:"transcription" mapstructure:"transcription"`
	Translation   time.Duration `json:"translation" mapstructure:"translation"`
	Synthesis     time.Duration `json:"synthesis" mapstructure:"synthesis"`
}

// RetryPolicy enables automatic retry of failed collaborator calls.
// MaxAttempts counts the first call; zero or one disables retry.
type RetryPolicy struct {
	MaxAttempts    int           `json:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff time.Duration `json:"initial_backoff" mapstructure:"initial_backoff"`
}

// BreakerPolicy enables a circuit breaker guarding a collaborator service.
// MaxFailures of zero disables the breaker. Cooldown is how long an open
// breaker waits before probing the service again.
type BreakerPolicy struct {
	MaxFailures int           `json:"max_failures" mapstructure:"max_failures"`
	Cooldown    time.Duration `json:"cooldown" mapstructure:"cooldown"`
}

// ResiliencePolicy groups the optional retry and breaker settings for one
// collaborator role. The zero value means timeout-only calls.
type ResiliencePolicy struct {
	Retry   RetryPolicy   `json:"retry" mapstructure:"retry"`
	Breaker BreakerPolicy `json:"breaker" mapstructure:"breaker"`
}

// ResilienceConfig tunes retry and circuit-breaker behavior per
// collaborator role. Translation breakers are tracked per service, so an
// open breaker on the top-ranked service never blocks the fallback walk.
type ResilienceConfig struct {
	Transcription ResiliencePolicy `json:"transcription" mapstructure:"transcription"`
	Translation   ResiliencePolicy `json:"translation" mapstructure:"translation"`
	Synthesis     ResiliencePolicy `json:"synthesis" mapstructure:"synthesis"`
}

// Config is the full pipeline configuration.
type Config struct {
	SourceLanguage string `json:"source_language" mapstructure:"source_language" validate:"required"`
	TargetLanguage string `json:"target_language" mapstructure:"target_language" validate:"required"`
	// ConversationID scopes the rolling context window. Empty means a
	// fresh id is assigned per session.
	ConversationID string `json:"conversation_id" mapstructure:"conversation_id"`

	InputDeviceID  string `json:"input_device_id" mapstructure:"input_device_id"`
	OutputDeviceID string `json:"output_device_id" mapstructure:"output_device_id"`

	Services    ServicesConfig      `json:"services" mapstructure:"services"`
	Translation TranslationConfig   `json:"translation" mapstructure:"translation"`
	Cache       cache.Config        `json:"cache" mapstructure:"cache"`
	Redis       RedisConfig         `json:"redis" mapstructure:"redis"`
	Context     conversation.Config `json:"context" mapstructure:"context"`
	Capture     audio.CaptureConfig `json:"capture" mapstructure:"capture"`
	Timeouts    TimeoutsConfig      `json:"timeouts" mapstructure:"timeouts"`
	Resilience  ResilienceConfig    `json:"resilience" mapstructure:"resilience"`
}

// Default returns a fully-populated configuration for an English to
// Spanish session using every known service in ranking order.
func Default() Config {
	cfg := Config{
		SourceLanguage: "en",
		TargetLanguage: "es",
	}
	cfg.Capture.VAD.Enabled = true
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	if len(c.Services.Transcription) == 0 {
		c.Services.Transcription = append([]string(nil), transcription.KnownServices...)
	}
	if len(c.Services.Translation) == 0 {
		c.Services.Translation = append([]string(nil), translation.KnownServices...)
	}
	if len(c.Services.Synthesis) == 0 {
		c.Services.Synthesis = append([]string(nil), synthesis.KnownServices...)
	}
	if c.Translation.Formality == "" {
		c.Translation.Formality = translation.FormalityDefault
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = cache.DefaultConfig().TTL
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = cache.DefaultConfig().MaxEntries
	}
	if c.Context.MaxAge <= 0 {
		c.Context.MaxAge = conversation.DefaultConfig().MaxAge
	}
	if c.Context.MaxEntries <= 0 {
		c.Context.MaxEntries = conversation.DefaultConfig().MaxEntries
	}
	defCap := audio.DefaultCaptureConfig()
	if c.Capture.Format.SampleRate <= 0 {
		c.Capture.Format = defCap.Format
	}
	if c.Capture.ChunkSize <= 0 {
		c.Capture.ChunkSize = defCap.ChunkSize
	}
	if c.Capture.VAD.Threshold <= 0 {
		c.Capture.VAD.Threshold = audio.DefaultVADConfig().Threshold
	}
	if c.Capture.VAD.HangoverChunks <= 0 {
		c.Capture.VAD.HangoverChunks = audio.DefaultVADConfig().HangoverChunks
	}
	if c.Timeouts.Transcription <= 0 {
		c.Timeouts.Transcription = time.Second
	}
	if c.Timeouts.Translation <= 0 {
		c.Timeouts.Translation = 500 * time.Millisecond
	}
	if c.Timeouts.Synthesis <= 0 {
		c.Timeouts.Synthesis = 1500 * time.Millisecond
	}
}

// Validate checks the configuration structurally and semantically. The
// returned error is a ConfigurationError naming the offending field.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if !IsKnownLanguage(c.SourceLanguage) {
		return errors.Configuration("source_language", fmt.Sprintf("unknown language code %q", c.SourceLanguage))
	}
	if !IsKnownLanguage(c.TargetLanguage) {
		return errors.Configuration("target_language", fmt.Sprintf("unknown language code %q", c.TargetLanguage))
	}
	if c.SourceLanguage == c.TargetLanguage {
		return errors.Configuration("target_language", "source and target languages must differ")
	}
	if err := validateServices("services.transcription", c.Services.Transcription, transcription.KnownServices); err != nil {
		return err
	}
	if err := validateServices("services.translation", c.Services.Translation, translation.KnownServices); err != nil {
		return err
	}
	if err := validateServices("services.synthesis", c.Services.Synthesis, synthesis.KnownServices); err != nil {
		return err
	}
	switch c.Translation.Formality {
	case translation.FormalityDefault, translation.FormalityMore, translation.FormalityLess:
	default:
		return errors.Configuration("translation.formality", fmt.Sprintf("unknown formality %q", c.Translation.Formality))
	}
	if c.Capture.VAD.Threshold < 0 || c.Capture.VAD.Threshold > 1 {
		return errors.Configuration("capture.vad.threshold", "must be between 0 and 1")
	}
	for _, rp := range []struct {
		field  string
		policy ResiliencePolicy
	}{
		{"resilience.transcription", c.Resilience.Transcription},
		{"resilience.translation", c.Resilience.Translation},
		{"resilience.synthesis", c.Resilience.Synthesis},
	} {
		if rp.policy.Retry.MaxAttempts < 0 {
			return errors.Configuration(rp.field+".retry.max_attempts", "must not be negative")
		}
		if rp.policy.Breaker.MaxFailures < 0 {
			return errors.Configuration(rp.field+".breaker.max_failures", "must not be negative")
		}
	}
	return nil
}

func validateServices(field string, names, known []string) error {
	if len(names) == 0 {
		return errors.Configuration(field, "at least one service is required")
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !contains(known, name) {
			return errors.Configuration(field, fmt.Sprintf("unknown service %q", name))
		}
		if seen[name] {
			return errors.Configuration(field, fmt.Sprintf("duplicate service %q", name))
		}
		seen[name] = true
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so a merged candidate can be validated
// without touching the original.
func (c Config) Clone() Config {
	out := c
	out.Services.Transcription = append([]string(nil), c.Services.Transcription...)
	out.Services.Translation = append([]string(nil), c.Services.Translation...)
	out.Services.Synthesis = append([]string(nil), c.Services.Synthesis...)
	return out
}
