package translation

import "time"

// ServiceAny is the wildcard service name used for service-agnostic cache
// lookups and requests that accept any backend.
const ServiceAny = "any"

// Formality levels understood by backends that support register control.
const (
	FormalityDefault = "default"
	FormalityMore    = "more"
	FormalityLess    = "less"
)

// Options carries the formatting knobs that are part of the normalized
// request identity: two requests differing in any option are distinct
// cache entries.
type Options struct {
	// Formality selects the formality register (default/more/less).
	Formality string `json:"formality,omitempty"`
	// PreserveFormatting asks the backend not to normalize whitespace
	// and punctuation.
	PreserveFormatting bool `json:"preserve_formatting,omitempty"`
}

// Request is the normalized translation request tuple. Identical tuples must
// be treated as identical requests regardless of call order.
type Request struct {
	// Text is the source text to translate.
	Text string `json:"text"`
	// SourceLanguage is the language of Text (e.g. "en").
	SourceLanguage string `json:"source_language"`
	// TargetLanguage is the language to translate into (e.g. "es").
	TargetLanguage string `json:"target_language"`
	// Service names the backend to use, or ServiceAny.
	Service string `json:"service,omitempty"`
	// Context is the rendered conversation history supplied to
	// context-aware backends. Not part of the cache identity.
	Context string `json:"context,omitempty"`
	// DomainContext is an optional domain hint (e.g. "medical").
	// Not part of the cache identity.
	DomainContext string `json:"domain_context,omitempty"`
	// Options are the formatting knobs included in the cache identity.
	Options Options `json:"options"`
}

// Result holds a completed translation. Results are never mutated after
// creation; adjustments copy first.
type Result struct {
	// TranslatedText is the translation output.
	TranslatedText string `json:"translated_text"`
	// SourceLanguage is the source language actually used (detected or declared).
	SourceLanguage string `json:"source_language"`
	// TargetLanguage is the target language of the output.
	TargetLanguage string `json:"target_language"`
	// Confidence is the backend's own quality estimate in [0,1], if reported.
	Confidence float64 `json:"confidence,omitempty"`
	// Service is the backend that produced the translation.
	Service string `json:"service"`
	// Latency is how long the backend call took.
	Latency time.Duration `json:"latency,omitempty"`
}
