package provider

import (
	"fmt"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// Registry resolves provider ids to their clients. Clients are stateless
// apart from their transport, so one instance per provider serves all
// requests.
type Registry struct {
	clients map[entities.Provider]ports.ProviderClient
}

// NewRegistry creates a registry with all supported providers, applying any
// per-provider configuration overrides.
func NewRegistry(cfg *entities.Config) *Registry {
	lookup := func(p entities.Provider) entities.ProviderConfig {
		if cfg == nil {
			return entities.ProviderConfig{}
		}
		return cfg.Provider(string(p))
	}

	return &Registry{clients: map[entities.Provider]ports.ProviderClient{
		entities.ProviderOpenAI:    NewOpenAIClient(lookup(entities.ProviderOpenAI)),
		entities.ProviderAnthropic: NewAnthropicClient(lookup(entities.ProviderAnthropic)),
		entities.ProviderGroq:      NewGroqClient(lookup(entities.ProviderGroq)),
	}}
}

// Client returns the client for the given provider.
func (r *Registry) Client(p entities.Provider) (ports.ProviderClient, error) {
	client, ok := r.clients[p]
	if !ok {
		return nil, entities.NewCompileError(entities.KindUnknownProvider, fmt.Sprintf("unsupported provider: %s", p), nil)
	}
	return client, nil
}

// Compile-time check that Registry implements ports.ProviderRegistry
var _ ports.ProviderRegistry = (*Registry)(nil)
