package provider

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/voicebridge/errors"
)

type stubProvider struct {
	name      string
	available bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return s.available }

func TestRankedSelectorSelect(t *testing.T) {
	providers := map[string]*stubProvider{
		"deepl":  {name: "deepl", available: false},
		"gpt4o":  {name: "gpt4o", available: true},
		"google": {name: "google", available: true},
	}

	sel := &RankedSelector[*stubProvider]{Ranking: []string{"deepl", "gpt4o", "google"}}
	got, err := sel.Select(context.Background(), providers)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got.Name() != "gpt4o" {
		t.Errorf("selected %q, want gpt4o (first available in ranking)", got.Name())
	}
}

func TestRankedSelectorCandidates(t *testing.T) {
	providers := map[string]*stubProvider{
		"google": {name: "google", available: true},
		"deepl":  {name: "deepl", available: false},
	}

	sel := &RankedSelector[*stubProvider]{Ranking: []string{"deepl", "gpt4o", "google"}}
	got := sel.Candidates(providers)

	// Unregistered names are skipped; unavailable ones still get their
	// fallback attempt.
	if len(got) != 2 || got[0].Name() != "deepl" || got[1].Name() != "google" {
		names := make([]string, len(got))
		for i, p := range got {
			names[i] = p.Name()
		}
		t.Errorf("candidates = %v, want [deepl google]", names)
	}
}

func TestManagerGetByName(t *testing.T) {
	m := NewManager[*stubProvider](NewRegistry[*stubProvider](), &RankedSelector[*stubProvider]{})
	m.Add(&stubProvider{name: "deepl", available: true})

	p, err := m.GetByName("deepl")
	if err != nil || p.Name() != "deepl" {
		t.Fatalf("GetByName() = %v, %v", p, err)
	}
	if _, err := m.GetByName("missing"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestManagerCandidatesFollowRanking(t *testing.T) {
	sel := &RankedSelector[*stubProvider]{Ranking: []string{"b", "a"}}
	m := NewManager[*stubProvider](NewRegistry[*stubProvider](), sel)
	m.Add(&stubProvider{name: "a", available: true})
	m.Add(&stubProvider{name: "b", available: true})

	got := m.Candidates()
	if len(got) != 2 || got[0].Name() != "b" || got[1].Name() != "a" {
		t.Errorf("candidates out of ranking order: %v, %v", got[0].Name(), got[1].Name())
	}
}

func TestExecuteTimeoutBecomesTimeoutError(t *testing.T) {
	state := BuildResilience(ResilienceConfig{Timeout: 20 * time.Millisecond})

	_, err := Execute(context.Background(), state, "translate", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Fatalf("error = %v, want timeout error", err)
	}
}

func TestExecutePassesThroughFailures(t *testing.T) {
	boom := stderrors.New("backend down")
	state := BuildResilience(ResilienceConfig{Timeout: time.Second})

	_, err := Execute(context.Background(), state, "translate", func(ctx context.Context) (string, error) {
		return "", boom
	})
	if !stderrors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped backend error", err)
	}
}

func TestExecuteNilStateIsPassthrough(t *testing.T) {
	got, err := Execute(context.Background(), nil, "noop", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("Execute() = %d, %v", got, err)
	}
}
