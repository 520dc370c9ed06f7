package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paperchat/paperchat/internal/adapter/utils"
	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/domain/chatModel"
	"github.com/paperchat/paperchat/internal/rag/embedding"
	"github.com/paperchat/paperchat/internal/rag/llm"
	"github.com/paperchat/paperchat/internal/rag/vectorDB"
	"github.com/paperchat/paperchat/pkg/logx"
)

var logger *logx.Logger

// Pipeline answers questions about one document. Ordering rules it enforces:
// the user's question is persisted before any model work starts, and the
// assistant's reply is persisted only once the completion finished cleanly.
type Pipeline struct {
	docs     store.DocumentStore
	msgs     store.MessageStore
	embedder embedding.Embedder
	index    vectorDB.Index
	provider llm.Provider
}

func NewPipeline(docs store.DocumentStore, msgs store.MessageStore, embedder embedding.Embedder, index vectorDB.Index, provider llm.Provider) *Pipeline {
	logger = logx.NewLogger("Chat")
	return &Pipeline{
		docs:     docs,
		msgs:     msgs,
		embedder: embedder,
		index:    index,
		provider: provider,
	}
}

// Answer runs retrieval and opens the completion stream. A document the
// caller doesn't own surfaces as store.ErrNotFound, indistinguishable from a
// missing one. Retrieval runs regardless of ingestion status; a still
// PROCESSING document just retrieves nothing.
func (p *Pipeline) Answer(ctx context.Context, docId, userId, question string) (*llm.TokenStream, error) {
	if _, err := p.docs.GetByID(ctx, docId, userId); err != nil {
		return nil, err
	}

	userMsg := chatModel.Message{
		Id:            utils.GetNewUUID(),
		DocumentId:    docId,
		UserId:        userId,
		Text:          question,
		IsUserMessage: true,
		CreatedAt:     time.Now(),
	}
	if err := p.msgs.Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persisting question: %w", err)
	}

	vector, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	hits, err := p.index.Query(ctx, docId, vector, config.RetrievalTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	history, err := p.msgs.RecentWindow(ctx, docId, config.ChatHistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	inner, err := p.provider.StreamComplete(ctx, systemPrompt, buildUserPrompt(history, hits, question), config.ChatTemperature)
	if err != nil {
		return nil, err
	}

	out := llm.NewTokenStream()
	go p.relay(ctx, docId, userId, inner, out)
	return out, nil
}

// relay forwards tokens while accumulating the full completion. A broken
// stream closes out with the error and persists nothing, so an aborted
// answer never shows up in history.
func (p *Pipeline) relay(ctx context.Context, docId, userId string, inner, out *llm.TokenStream) {
	var full strings.Builder
	for token := range inner.Tokens() {
		full.WriteString(token)
		out.Push(token)
	}
	if err := inner.Err(); err != nil {
		logger.Error("completion aborted", "docId", docId, "error", err)
		out.Close(err)
		return
	}

	assistantMsg := chatModel.Message{
		Id:            utils.GetNewUUID(),
		DocumentId:    docId,
		UserId:        userId,
		Text:          full.String(),
		IsUserMessage: false,
		CreatedAt:     time.Now(),
	}
	if err := p.msgs.Create(ctx, assistantMsg); err != nil {
		logger.Error("could not persist answer", "docId", docId, "error", err)
		out.Close(fmt.Errorf("persisting answer: %w", err))
		return
	}
	out.Close(nil)
}
