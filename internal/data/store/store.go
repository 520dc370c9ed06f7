package store

import (
	"context"
	"errors"

	"github.com/paperchat/paperchat/internal/domain/chatModel"
	"github.com/paperchat/paperchat/internal/domain/docModel"
)

var ErrNotFound = errors.New("not found")

// DocumentStore persists uploaded-document metadata and processing status.
// All reads exposed to end users are scoped by owner id; UpdateStatus is the
// one unscoped write because the ingestion worker owns the row at that point.
type DocumentStore interface {
	Create(ctx context.Context, doc docModel.Document) error
	GetByID(ctx context.Context, id string, userId string) (docModel.Document, error)
	ListByUser(ctx context.Context, userId string) ([]docModel.Document, error)
	Delete(ctx context.Context, id string, userId string) error

	// UpdateStatus is an unconditional write; concurrent ingest runs race
	// last-writer-wins, the caller validates the transition beforehand.
	UpdateStatus(ctx context.Context, id string, status docModel.UploadStatus, pageCount int) error
	GetStatus(ctx context.Context, id string, userId string) (docModel.UploadStatus, error)
}

// MessageStore persists chat turns per document.
type MessageStore interface {
	Create(ctx context.Context, msg chatModel.Message) error

	// ListByDocument pages newest-first with a keyset cursor (a message id).
	// It returns the page and the cursor for the next one, "" when done.
	ListByDocument(ctx context.Context, docId string, limit int, cursor string) ([]chatModel.Message, string, error)

	// RecentWindow returns the n most recent messages in ascending creation
	// order, the shape the prompt's conversation-history section wants.
	RecentWindow(ctx context.Context, docId string, n int) ([]chatModel.Message, error)

	DeleteByDocument(ctx context.Context, docId string) error
}

// SessionStore resolves opaque bearer tokens minted by the external auth
// provider into user ids.
type SessionStore interface {
	Resolve(ctx context.Context, token string) (string, error)
	Put(ctx context.Context, token string, userId string) error
}
