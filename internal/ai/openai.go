package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/progress"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI asks a chat completion model for a quote.
type OpenAI struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAI(apiKey, model string, logger *zap.Logger, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required (set ai.api_key or OPENAI_API_KEY)")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}, nil
}

func (o *OpenAI) Motivate(ctx context.Context, sum progress.Summary) (*Motivation, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(sum)),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("openai returned status %d: %w", apiErr.StatusCode, err)
		}
		return nil, fmt.Errorf("calling openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openai response")
	}

	o.logger.Debug("openai reply",
		zap.String("model", resp.Model),
		zap.Int64("total_tokens", resp.Usage.TotalTokens))

	return parseMotivation(resp.Choices[0].Message.Content)
}
