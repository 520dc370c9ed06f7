package gemini

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

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
	genAi *genai.Client
	model string
}

// GetGeminiClient is the Gemini alternative to the OpenAI completion client,
// selected with LLM_PROVIDER=gemini.
func GetGeminiClient(ctx context.Context, apiKey string) llm.Provider {
	once.Do(func() {
		logger = logx.NewLogger("gemini_llm")
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			logger.Error("Error creating Gemini client", "error", err)
			return
		}
		llmInstance = &client{genAi: c, model: config.GeminiChatModel}
		logger.Info("Gemini client created", "model", config.GeminiChatModel)
	})

	if llmInstance == nil {
		return nil
	}
	return llmInstance
}

func (c *client) StreamComplete(ctx context.Context, system, user string, temperature float64) (*llm.TokenStream, error) {
	temp := float32(temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:       &temp,
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	out := llm.NewTokenStream()
	go func() {
		for resp, err := range c.genAi.Models.GenerateContentStream(ctx, c.model, genai.Text(user), cfg) {
			if err != nil {
				logger.Error("completion stream broke", "error", err)
				out.Close(fmt.Errorf("gemini completion: %w", err))
				return
			}
			if token := resp.Text(); token != "" {
				out.Push(token)
			}
		}
		out.Close(nil)
	}()
	return out, nil
}
