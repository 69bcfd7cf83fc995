package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

const (
	openAIEndpoint    = "https://api.openai.com/v1/chat/completions"
	openAIKeyPrefix   = "sk-"
	openAIPromptRunes = 48000
)

// OpenAIClient speaks the OpenAI chat completions API.
type OpenAIClient struct {
	client   httpDoer
	endpoint string
	budget   int
}

// NewOpenAIClient creates an OpenAI client. An empty endpoint uses the
// public API; cfg overrides apply when set.
func NewOpenAIClient(cfg entities.ProviderConfig) *OpenAIClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = openAIEndpoint
	} else {
		endpoint = strings.TrimRight(endpoint, "/") + "/v1/chat/completions"
	}
	budget := cfg.MaxPromptRunes
	if budget <= 0 {
		budget = openAIPromptRunes
	}
	return &OpenAIClient{client: newHTTPClient(), endpoint: endpoint, budget: budget}
}

// Provider returns the backend id.
func (c *OpenAIClient) Provider() entities.Provider {
	return entities.ProviderOpenAI
}

// chatCompletionPayload is the request envelope shared by the OpenAI-style
// chat APIs.
type chatCompletionPayload struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionEnvelope is the response envelope; only the first choice's
// message content is of interest.
type chatCompletionEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete submits the prompt and returns the completion text.
func (c *OpenAIClient) Complete(ctx context.Context, req *entities.ProviderRequest) (string, error) {
	if err := checkRequest(req, openAIKeyPrefix, c.budget); err != nil {
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

// decodeChatCompletion extracts the completion text from an OpenAI-style
// envelope.
func decodeChatCompletion(body []byte, provider entities.Provider) (string, error) {
	var envelope chatCompletionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", entities.NewCompileError(entities.KindUpstreamError, string(provider)+" returned a malformed envelope", err)
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return "", entities.NewCompileError(entities.KindUpstreamError, string(provider)+" returned no completion", nil)
	}
	return envelope.Choices[0].Message.Content, nil
}

// Compile-time check that OpenAIClient implements ports.ProviderClient
var _ ports.ProviderClient = (*OpenAIClient)(nil)
