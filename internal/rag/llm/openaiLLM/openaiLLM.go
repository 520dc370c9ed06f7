package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/rag/llm"
	"github.com/paperchat/paperchat/pkg/logx"
)

var (
	logger      *logx.Logger
	llmInstance *client
	once        sync.Once
)

type client struct {
	api   openai.Client
	model string
}

// GetOpenAILLMClient builds the process-wide chat completion client.
func GetOpenAILLMClient(apiKey string) llm.Provider {
	once.Do(func() {
		logger = logx.NewLogger("openai_llm")
		if apiKey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		llmInstance = &client{
			api:   openai.NewClient(option.WithAPIKey(apiKey)),
			model: config.ChatModel,
		}
		logger.Info("OpenAI LLM client created", "model", config.ChatModel)
	})

	if llmInstance == nil {
		return nil
	}
	return llmInstance
}

func (c *client) StreamComplete(ctx context.Context, system, user string, temperature float64) (*llm.TokenStream, error) {
	stream := c.api.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
	})
	if err := stream.Err(); err != nil {
		logger.Error("could not open completion stream", "error", err)
		return nil, fmt.Errorf("openai completion: %w", err)
	}

	out := llm.NewTokenStream()
	go func() {
		defer stream.Close()
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if token := chunk.Choices[0].Delta.Content; token != "" {
				out.Push(token)
			}
		}
		if err := stream.Err(); err != nil {
			logger.Error("completion stream broke", "error", err)
			out.Close(fmt.Errorf("openai completion: %w", err))
			return
		}
		out.Close(nil)
	}()
	return out, nil
}
