package config

import "time"

// Partial is a sparse configuration update. Nil fields leave the current
// value untouched.
type Partial struct {
	SourceLanguage *string `json:"source_language,omitempty"`
	TargetLanguage *string `json:"target_language,omitempty"`
	ConversationID *string `json:"conversation_id,omitempty"`

	InputDeviceID  *string `json:"input_device_id,omitempty"`
	OutputDeviceID *string `json:"output_device_id,omitempty"`

	TranscriptionServices []string `json:"transcription_services,omitempty"`
	TranslationServices   []string `json:"translation_services,omitempty"`
	SynthesisServices     []string `json:"synthesis_services,omitempty"`

	Formality          *string `json:"formality,omitempty"`
	PreserveFormatting *bool   `json:"preserve_formatting,omitempty"`
	DomainContext      *string `json:"domain_context,omitempty"`

	CacheTTL        *time.Duration `json:"cache_ttl,omitempty"`
	CacheMaxEntries *int           `json:"cache_max_entries,omitempty"`

	ContextMaxAge     *time.Duration `json:"context_max_age,omitempty"`
	ContextMaxEntries *int           `json:"context_max_entries,omitempty"`

	VADEnabled   *bool    `json:"vad_enabled,omitempty"`
	VADThreshold *float64 `json:"vad_threshold,omitempty"`

	TranscriptionTimeout *time.Duration `json:"transcription_timeout,omitempty"`
	TranslationTimeout   *time.Duration `json:"translation_timeout,omitempty"`
	SynthesisTimeout     *time.Duration `json:"synthesis_timeout,omitempty"`
}

// Merge applies the partial update on top of the current configuration
// and validates the result. On validation failure the error names the
// offending field and the receiver is left unchanged; the returned
// Config is only meaningful when err is nil.
func (c Config) Merge(p Partial) (Config, error) {
	out := c.Clone()

	setString(&out.SourceLanguage, p.SourceLanguage)
	setString(&out.TargetLanguage, p.TargetLanguage)
	setString(&out.ConversationID, p.ConversationID)
	setString(&out.InputDeviceID, p.InputDeviceID)
	setString(&out.OutputDeviceID, p.OutputDeviceID)

	if p.TranscriptionServices != nil {
		out.Services.Transcription = append([]string(nil), p.TranscriptionServices...)
	}
	if p.TranslationServices != nil {
		out.Services.Translation = append([]string(nil), p.TranslationServices...)
	}
	if p.SynthesisServices != nil {
		out.Services.Synthesis = append([]string(nil), p.SynthesisServices...)
	}

	setString(&out.Translation.Formality, p.Formality)
	setString(&out.Translation.DomainContext, p.DomainContext)
	if p.PreserveFormatting != nil {
		out.Translation.PreserveFormatting = *p.PreserveFormatting
	}

	if p.CacheTTL != nil {
		out.Cache.TTL = *p.CacheTTL
	}
	if p.CacheMaxEntries != nil {
		out.Cache.MaxEntries = *p.CacheMaxEntries
	}
	if p.ContextMaxAge != nil {
		out.Context.MaxAge = *p.ContextMaxAge
	}
	if p.ContextMaxEntries != nil {
		out.Context.MaxEntries = *p.ContextMaxEntries
	}

	if p.VADEnabled != nil {
		out.Capture.VAD.Enabled = *p.VADEnabled
	}
	if p.VADThreshold != nil {
		out.Capture.VAD.Threshold = *p.VADThreshold
	}

	if p.TranscriptionTimeout != nil {
		out.Timeouts.Transcription = *p.TranscriptionTimeout
	}
	if p.TranslationTimeout != nil {
		out.Timeouts.Translation = *p.TranslationTimeout
	}
	if p.SynthesisTimeout != nil {
		out.Timeouts.Synthesis = *p.SynthesisTimeout
	}

	out.ApplyDefaults()
	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
