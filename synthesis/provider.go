package synthesis

import (
	"context"

	"github.com/kbukum/voicebridge/provider"
)

// KnownServices lists the synthesis backends the pipeline understands.
var KnownServices = []string{"elevenlabs", "google", "azure"}

// Provider is the interface that synthesis backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Synthesize renders the request text as audio.
	Synthesize(ctx context.Context, req Request) (*Audio, error)
}

// NewRegistry creates a new provider registry for synthesis providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// NewManager creates a new provider manager for synthesis providers.
func NewManager(selector provider.Selector[Provider]) *provider.Manager[Provider] {
	if selector == nil {
		selector = &provider.HealthCheckSelector[Provider]{}
	}
	return provider.NewManager(NewRegistry(), selector)
}
