package embedding

import "context"

// Embedder turns text into vectors. EmbedQuery is the chat-side single-shot
// call; EmbedBatch embeds every chunk of a document during ingestion.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
