package provider

import (
	"context"
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

const (
	groqEndpoint    = "https://api.groq.com/openai/v1/chat/completions"
	groqKeyPrefix   = "gsk_"
	groqPromptRunes = 24000
)

// GroqClient speaks Groq's OpenAI-compatible chat completions API.
type GroqClient struct {
	client   httpDoer
	endpoint string
	budget   int
}

// NewGroqClient creates a Groq client.
func NewGroqClient(cfg entities.ProviderConfig) *GroqClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = groqEndpoint
	} else {
		endpoint = strings.TrimRight(endpoint, "/") + "/openai/v1/chat/completions"
	}
	budget := cfg.MaxPromptRunes
	if budget <= 0 {
		budget = groqPromptRunes
	}
	return &GroqClient{client: newHTTPClient(), endpoint: endpoint, budget: budget}
}

// Provider returns the backend id.
func (c *GroqClient) Provider() entities.Provider {
	return entities.ProviderGroq
}

// Complete submits the prompt and returns the completion text. Groq's wire
// format is the OpenAI chat envelope.
func (c *GroqClient) Complete(ctx context.Context, req *entities.ProviderRequest) (string, error) {
	if err := checkRequest(req, groqKeyPrefix, c.budget); err != nil {
		return "", err
	}

	httpReq, err := postJSON(ctx, c.endpoint, chatCompletionPayload{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: 0.7,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential.Reveal())

	body, err := execute(ctx, c.client, httpReq, c.Provider())
	if err != nil {
		return "", err
	}

	return decodeChatCompletion(body, c.Provider())
}

// Compile-time check that GroqClient implements ports.ProviderClient
var _ ports.ProviderClient = (*GroqClient)(nil)
