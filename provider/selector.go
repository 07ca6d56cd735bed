package provider

import (
	"context"
	"fmt"
	"sort"
)

// Selector picks a provider from the available options.
type Selector[T Provider] interface {
	Select(ctx context.Context, providers map[string]T) (T, error)
}

// RankedSelector orders providers by a configured ranking. It is the
// selection strategy behind the translation fallback walk: Candidates
// returns every registered provider in ranking order so the caller can
// try each in turn, while Select returns only the top available one.
type RankedSelector[T Provider] struct {
	// Ranking is the ordered list of provider names, best first.
	Ranking []string
}

// Select returns the first available provider in ranking order.
func (s *RankedSelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	for _, name := range s.Ranking {
		if p, ok := providers[name]; ok && p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("no available provider found in ranking")
}

// Candidates returns the registered providers in ranking order, skipping
// names that have no registered instance. Availability is not checked here;
// an unavailable provider still gets its attempt during a fallback walk so
// that transient recoveries are not masked by a stale health probe.
func (s *RankedSelector[T]) Candidates(providers map[string]T) []T {
	out := make([]T, 0, len(s.Ranking))
	for _, name := range s.Ranking {
		if p, ok := providers[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

// HealthCheckSelector picks the first available provider by calling IsAvailable.
type HealthCheckSelector[T Provider] struct{}

// Select returns the first provider that reports as available, in sorted
// name order for determinism.
func (s *HealthCheckSelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if p := providers[name]; p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("no available provider found")
}
