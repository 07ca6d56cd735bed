package translation

import "github.com/kbukum/voicebridge/provider"

// KnownServices lists the translation backends the pipeline understands,
// in default quality ranking order.
var KnownServices = []string{"deepl", "gpt4o", "google", "azure"}

// IsKnownService reports whether name is a recognized backend or ServiceAny.
func IsKnownService(name string) bool {
	if name == ServiceAny {
		return true
	}
	for _, s := range KnownServices {
		if s == name {
			return true
		}
	}
	return false
}

// NewRegistry creates a new provider registry for translation providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// ManagerOption configures the translation provider manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	selector provider.Selector[Provider]
}

// WithSelector sets the provider selection strategy for the manager.
func WithSelector(s provider.Selector[Provider]) ManagerOption {
	return func(c *managerConfig) {
		c.selector = s
	}
}

// WithRanking is shorthand for a RankedSelector over the given service order.
func WithRanking(services ...string) ManagerOption {
	return WithSelector(&provider.RankedSelector[Provider]{Ranking: services})
}

// NewManager creates a new provider manager for translation providers.
// The default selector ranks services in KnownServices order.
func NewManager(opts ...ManagerOption) *provider.Manager[Provider] {
	cfg := &managerConfig{
		selector: &provider.RankedSelector[Provider]{Ranking: KnownServices},
	}
	for _, o := range opts {
		o(cfg)
	}
	return provider.NewManager(NewRegistry(), cfg.selector)
}
