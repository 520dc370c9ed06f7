package googleEmbedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/rag/embedding"
	"github.com/paperchat/paperchat/pkg/logx"
)

var (
	logger          *logx.Logger
	embeddingClient *client
	once            sync.Once
	dimension       = int32(config.VectorDimensions)
)

type client struct {
	genAi *genai.Client
	model string
}

// GetGoogleEmbeddingClient is the Gemini alternative to the OpenAI embedder,
// selected with LLM_PROVIDER=gemini.
func GetGoogleEmbeddingClient(ctx context.Context, apiKey string) embedding.Embedder {
	once.Do(func() {
		logger = logx.NewLogger("google_embedding")
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			logger.Error("Error creating Google embedding client", "error", err)
			return
		}
		embeddingClient = &client{genAi: c, model: config.GeminiEmbedModel}
		logger.Info("Google embedding client created", "model", config.GeminiEmbedModel)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	res, err := c.doCall(ctx, getContent(texts))
	if err != nil && doRetry(err) {
		logger.Debug("Rate limited, retrying in 5 seconds")
		time.Sleep(5 * time.Second)
		res, err = c.doCall(ctx, getContent(texts))
	}
	if err != nil {
		logger.Error("Error getting embeddings from Google", "error", err)
		return nil, fmt.Errorf("google embeddings: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("google embeddings: got %d vectors for %d inputs", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, r := range res.Embeddings {
		vectors[i] = r.Values
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}
	return contents
}

func doRetry(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
