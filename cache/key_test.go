package cache

import (
	"testing"

	"github.com/kbukum/voicebridge/translation"
)

func TestKeyDeterminism(t *testing.T) {
	a := translation.Request{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl"}
	b := translation.Request{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl"}
	if Key(a) != Key(b) {
		t.Error("identical requests must produce identical keys")
	}
}

func TestKeyIgnoresNonIdentityFields(t *testing.T) {
	a := translation.Request{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl"}
	b := a
	b.Context = "previous exchange"
	b.DomainContext = "medical"
	if Key(a) != Key(b) {
		t.Error("context fields must not affect the cache identity")
	}
}

func TestKeyInjectivity(t *testing.T) {
	base := translation.Request{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl"}

	variants := []translation.Request{
		{Text: "Hello!", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl"},
		{Text: "Hello", SourceLanguage: "de", TargetLanguage: "es", Service: "deepl"},
		{Text: "Hello", SourceLanguage: "en", TargetLanguage: "fr", Service: "deepl"},
		{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Service: "google"},
		{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl",
			Options: translation.Options{Formality: translation.FormalityMore}},
		{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl",
			Options: translation.Options{PreserveFormatting: true}},
	}

	baseKey := Key(base)
	seen := map[string]int{baseKey: -1}
	for i, v := range variants {
		k := Key(v)
		if k == baseKey {
			t.Errorf("variant %d collides with base key", i)
		}
		if prev, dup := seen[k]; dup {
			t.Errorf("variants %d and %d collide", prev, i)
		}
		seen[k] = i
	}
}

func TestKeyInjectiveAgainstDelimiterAbuse(t *testing.T) {
	// Length prefixes keep crafted field contents from shifting boundaries.
	a := translation.Request{Text: "x;1:y", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl"}
	b := translation.Request{Text: "x", SourceLanguage: "en", TargetLanguage: "es", Service: "deepl"}
	if Key(a) == Key(b) {
		t.Error("crafted text must not collide")
	}
}

func TestKeyNormalizesCaseAndDefaults(t *testing.T) {
	a := translation.Request{Text: "Hello", SourceLanguage: "EN", TargetLanguage: "es", Service: "deepl"}
	b := translation.Request{Text: "Hello", SourceLanguage: "en", TargetLanguage: "ES", Service: "deepl"}
	if Key(a) != Key(b) {
		t.Error("language codes must be case-insensitive in the key")
	}

	c := translation.Request{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es"}
	d := translation.Request{Text: "Hello", SourceLanguage: "en", TargetLanguage: "es", Service: translation.ServiceAny}
	if Key(c) != Key(d) {
		t.Error("empty service must normalize to the any service")
	}
}
