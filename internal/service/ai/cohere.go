package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is Cohere's OpenAI-compatible chat completions endpoint.
const DefaultBaseURL = "https://api.cohere.ai/compatibility/v1"

// DefaultModel is used when no model is configured.
const DefaultModel = "command-r"

const systemPreamble = "You will play the part of a given character, involved in a conversation with another character. " +
	"Take care in only replying as your character and to never break the fourth curtain."

var (
	ErrMissingAPIKey = errors.New("cohere api key is required")
	ErrNoChoices     = errors.New("model returned no choices")
)

// CohereGateway implements Gateway against the Cohere chat API.
type CohereGateway struct {
	client openai.Client
}

// NewCohereGateway builds a gateway for the given credentials. An empty
// baseURL selects Cohere's hosted compatibility endpoint.
func NewCohereGateway(apiKey, baseURL string) (*CohereGateway, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &CohereGateway{client: client}, nil
}

// Generate sends the prompt as a single user message under the fixed
// role-playing preamble and returns the model's reply text.
func (g *CohereGateway) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPreamble),
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("cohere chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrNoChoices
	}

	reply := completion.Choices[0].Message.Content
	log.Printf("[ai] generated line, model=%s length=%d", model, len(reply))
	return reply, nil
}
