package vectorDB

import (
	"context"

	"github.com/paperchat/paperchat/internal/domain/docModel"
)

// Index is the semantic index over document text. Every operation is scoped
// to a namespace, which by construction is a document id, so vectors of
// different documents can never mix.
type Index interface {
	// EnsureReady creates the backing collection and its namespace index if
	// they don't exist yet.
	EnsureReady(ctx context.Context) error

	UpsertBatch(ctx context.Context, namespace string, chunks []docModel.DocChunk, vectors [][]float32) error

	// Query returns up to topK chunks ordered by descending similarity. No
	// score threshold is applied.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]docModel.ScoredChunk, error)

	// DeleteNamespace drops every vector of one document.
	DeleteNamespace(ctx context.Context, namespace string) error
}
