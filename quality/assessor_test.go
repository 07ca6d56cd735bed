package quality

import (
	"math"
	"math/rand"
	"testing"
)

func TestAssessDeterminism(t *testing.T) {
	a := NewAssessor(DefaultConfig())
	in := Input{
		Original:     "Hello world",
		Translated:   "Hola mundo",
		FromLanguage: "en",
		ToLanguage:   "es",
		Service:      "deepl",
	}

	first := a.Assess(in)
	second := a.Assess(in)

	if first != second {
		t.Errorf("identical inputs must score identically: %+v vs %+v", first, second)
	}
}

func TestServiceBaselineOrdering(t *testing.T) {
	a := NewAssessor(DefaultConfig())

	score := func(service string) float64 {
		return a.Assess(Input{
			Original: "Hello world", Translated: "Hola mundo", Service: service,
		}).Overall
	}

	if score("deepl") <= score("google") {
		t.Error("deepl baseline should outrank google")
	}
	if score("google") <= score("unknown-vendor") {
		t.Error("known service should outrank the default baseline")
	}
}

func TestContextAndDomainAdjustments(t *testing.T) {
	a := NewAssessor(DefaultConfig())
	base := Input{Original: "Hello world", Translated: "Hola mundo", Service: "google"}

	plain := a.Assess(base).Overall

	withContext := base
	withContext.Context = "Hi → Hola"
	if got := a.Assess(withContext).Overall; got <= plain {
		t.Errorf("context should raise the score: %f <= %f", got, plain)
	}

	withDomain := base
	withDomain.DomainContext = "medical"
	if got := a.Assess(withDomain).Overall; got <= plain {
		t.Errorf("domain hint should raise the score: %f <= %f", got, plain)
	}
}

func TestDegenerateTranslationsPenalized(t *testing.T) {
	a := NewAssessor(DefaultConfig())

	empty := a.Assess(Input{Original: "Hello world", Translated: "", Service: "deepl"})
	normal := a.Assess(Input{Original: "Hello world", Translated: "Hola mundo", Service: "deepl"})
	if empty.Overall >= normal.Overall {
		t.Error("empty translation should score below a normal one")
	}

	truncated := a.Assess(Input{
		Original: "This is a fairly long sentence about nothing", Translated: "x", Service: "deepl",
	})
	if truncated.Overall >= normal.Overall {
		t.Error("drastically shortened translation should be penalized")
	}
}

func TestSubScoreOffsets(t *testing.T) {
	a := NewAssessor(DefaultConfig())
	got := a.Assess(Input{Original: "Hello world", Translated: "Hola mundo", Service: "google"})

	if got.Accuracy <= got.Fluency {
		t.Error("accuracy should sit above fluency")
	}
	if got.Fluency <= got.Cultural {
		t.Error("fluency should sit above cultural")
	}
	for name, v := range map[string]float64{
		"overall": got.Overall, "accuracy": got.Accuracy,
		"fluency": got.Fluency, "cultural": got.Cultural,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s out of range: %f", name, v)
		}
	}
}

func TestSeededJitterReproducible(t *testing.T) {
	in := Input{Original: "Hello world", Translated: "Hola mundo", Service: "deepl"}

	cfg := DefaultConfig()
	cfg.Jitter = rand.New(rand.NewSource(42))
	first := NewAssessor(cfg).Assess(in)

	cfg2 := DefaultConfig()
	cfg2.Jitter = rand.New(rand.NewSource(42))
	second := NewAssessor(cfg2).Assess(in)

	if math.Abs(first.Overall-second.Overall) > 1e-12 {
		t.Errorf("same seed must reproduce scores: %f vs %f", first.Overall, second.Overall)
	}
}
