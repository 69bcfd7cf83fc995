package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

const (
	anthropicEndpoint    = "https://api.anthropic.com/v1/messages"
	anthropicKeyPrefix   = "sk-ant-"
	anthropicVersion     = "2023-06-01"
	anthropicPromptRunes = 64000
	anthropicMaxTokens   = 2000
)

// AnthropicClient speaks the Anthropic messages API.
type AnthropicClient struct {
	client   httpDoer
	endpoint string
	budget   int
}

// NewAnthropicClient creates an Anthropic client.
func NewAnthropicClient(cfg entities.ProviderConfig) *AnthropicClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = anthropicEndpoint
	} else {
		endpoint = strings.TrimRight(endpoint, "/") + "/v1/messages"
	}
	budget := cfg.MaxPromptRunes
	if budget <= 0 {
		budget = anthropicPromptRunes
	}
	return &AnthropicClient{client: newHTTPClient(), endpoint: endpoint, budget: budget}
}

// Provider returns the backend id.
func (c *AnthropicClient) Provider() entities.Provider {
	return entities.ProviderAnthropic
}

type anthropicPayload struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicEnvelope struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete submits the prompt and returns the completion text.
func (c *AnthropicClient) Complete(ctx context.Context, req *entities.ProviderRequest) (string, error) {
	if err := checkRequest(req, anthropicKeyPrefix, c.budget); err != nil {
		return "", err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	httpReq, err := postJSON(ctx, c.endpoint, anthropicPayload{
		Model:     req.Model,
		MaxTokens: maxTokens,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("x-api-key", req.Credential.Reveal())
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	body, err := execute(ctx, c.client, httpReq, c.Provider())
	if err != nil {
		return "", err
	}

	var envelope anthropicEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", entities.NewCompileError(entities.KindUpstreamError, "anthropic returned a malformed envelope", err)
	}
	for _, block := range envelope.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", entities.NewCompileError(entities.KindUpstreamError, "anthropic returned no text content", nil)
}

// Compile-time check that AnthropicClient implements ports.ProviderClient
var _ ports.ProviderClient = (*AnthropicClient)(nil)
