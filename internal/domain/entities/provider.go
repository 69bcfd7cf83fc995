package entities

import "fmt"

// Provider identifies an LLM backend consulted to plan slide content.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGroq      Provider = "groq"
)

// Valid reports whether the provider is one of the supported backends.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGroq:
		return true
	}
	return false
}

// ProviderInfo is a static capability fact about a supported provider,
// served by the introspection endpoint. It carries no per-request state.
type ProviderInfo struct {
	ID           Provider `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	DefaultModel string   `json:"default_model"`
	KeyPrefix    string   `json:"-"` // Advisory credential prefix, not a trust boundary
}

// SupportedProviders returns the static provider fact table in stable order.
func SupportedProviders() []ProviderInfo {
	return []ProviderInfo{
		{
			ID:           ProviderOpenAI,
			Name:         "OpenAI (GPT)",
			Description:  "OpenAI chat completion models",
			DefaultModel: "gpt-3.5-turbo",
			KeyPrefix:    "sk-",
		},
		{
			ID:           ProviderAnthropic,
			Name:         "Anthropic (Claude)",
			Description:  "Anthropic Claude models",
			DefaultModel: "claude-3-sonnet-20240229",
			KeyPrefix:    "sk-ant-",
		},
		{
			ID:           ProviderGroq,
			Name:         "Groq",
			Description:  "Groq fast inference platform",
			DefaultModel: "llama-3.1-8b-instant",
			KeyPrefix:    "gsk_",
		},
	}
}

// LookupProvider returns the fact entry for a provider id.
func LookupProvider(p Provider) (ProviderInfo, error) {
	for _, info := range SupportedProviders() {
		if info.ID == p {
			return info, nil
		}
	}
	return ProviderInfo{}, fmt.Errorf("unsupported provider: %s", p)
}

// ProviderRequest is the per-invocation unit handed to a provider client.
// It is constructed immediately before the outbound call and discarded when
// the call returns; it is never cached or written anywhere durable.
type ProviderRequest struct {
	Provider   Provider
	Credential *Credential
	Prompt     string
	Model      string
	MaxTokens  int
}
