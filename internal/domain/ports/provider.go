package ports

import (
	"context"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// ProviderClient is the uniform capability contract over one LLM backend:
// submit a text prompt, receive a text completion. Implementations perform
// exactly one outbound call per invocation and never retry; retry policy
// lives in the compiler service.
type ProviderClient interface {
	// Provider returns the backend this client speaks to.
	Provider() entities.Provider

	// Complete submits the prompt and returns the raw model output. The
	// call is bounded by ctx; failures are typed *entities.CompileError
	// values (auth, rate limit, timeout, upstream).
	Complete(ctx context.Context, req *entities.ProviderRequest) (string, error)
}

// ProviderRegistry resolves a provider id to its client.
type ProviderRegistry interface {
	// Client returns the client for the given provider, or a typed
	// unknown-provider failure.
	Client(p entities.Provider) (ProviderClient, error)
}
