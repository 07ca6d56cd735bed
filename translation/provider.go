package translation

import (
	"context"

	"github.com/kbukum/voicebridge/provider"
)

// Provider is the interface that translation backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Translate translates the request text and returns the result.
	// The request's Context field, when non-empty, carries recent
	// conversation history for backends that can use it.
	Translate(ctx context.Context, req Request) (*Result, error)
}
