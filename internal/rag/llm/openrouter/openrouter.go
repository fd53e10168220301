package openrouter

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/customHttpClient"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/appError"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/chatModel"
	"github.com/krypton-oss/kryptonsec-api/internal/rag/llm"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// OpenRouter speaks the OpenAI wire protocol, so the client library is
// pointed at its base URL. The extra headers are OpenRouter's app
// attribution convention.
type routerClient struct {
	client openai.Client
	logger *logger_i.Logger
}

var instance *routerClient
var once sync.Once

func GetOpenRouterClient(apiKey string) llm.Provider {
	once.Do(func() {
		logger := logger_i.NewLogger("llm_openrouter")
		if apiKey == "" {
			logger.Error("OPENROUTER_API_KEY not set, chat completions unavailable")
			return
		}
		instance = &routerClient{
			client: openai.NewClient(
				option.WithAPIKey(apiKey),
				option.WithBaseURL(config.OpenRouterBaseURL),
				option.WithHTTPClient(customHttpClient.PooledClient()),
				option.WithHeader("HTTP-Referer", config.OpenRouterReferer),
				option.WithHeader("X-Title", config.OpenRouterTitle),
			),
			logger: logger,
		}
		logger.Info("OpenRouter client created")
	})

	if instance == nil {
		return nil
	}
	return instance
}

func (c *routerClient) Complete(ctx context.Context, model string, messages []chatModel.Message, maxTokens int64) (string, error) {
	if model == "" {
		model = config.DefaultChatModel
	}

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(model),
		Messages:  toWireMessages(messages),
		MaxTokens: openai.Int(maxTokens),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.logger.Error("completion request failed", "model", model, "error", err)
		return "", fmt.Errorf("%w: %v", appError.ErrProvider, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion response", appError.ErrProvider)
	}
	return completion.Choices[0].Message.Content, nil
}

func toWireMessages(messages []chatModel.Message) []openai.ChatCompletionMessageParamUnion {
	wire := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chatModel.RoleSystem:
			wire = append(wire, openai.SystemMessage(m.Content))
		case chatModel.RoleAssistant:
			wire = append(wire, openai.AssistantMessage(m.Content))
		default:
			wire = append(wire, openai.UserMessage(m.Content))
		}
	}
	return wire
}
