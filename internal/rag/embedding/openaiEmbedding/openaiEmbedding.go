package openaiEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/rag/embedding"
	"github.com/paperchat/paperchat/pkg/logx"
)

var (
	logger          *logx.Logger
	embeddingClient *client
	once            sync.Once
)

type client struct {
	api   openai.Client
	model string
}

// GetOpenAIEmbeddingClient builds the process-wide OpenAI embedder.
func GetOpenAIEmbeddingClient(apiKey string) embedding.Embedder {
	once.Do(func() {
		logger = logx.NewLogger("openai_embedding")
		if apiKey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		embeddingClient = &client{
			api:   openai.NewClient(option.WithAPIKey(apiKey)),
			model: config.EmbeddingModel,
		}
		logger.Info("OpenAI embedding client created", "model", config.EmbeddingModel)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts)
}

func (c *client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(c.model),
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions: openai.Int(int64(config.VectorDimensions)),
	})
	if err != nil {
		logger.Error("embedding call failed", "error", err)
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
