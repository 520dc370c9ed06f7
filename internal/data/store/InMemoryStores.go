package store

import (
	"context"
	"sort"
	"sync"

	"github.com/paperchat/paperchat/internal/domain/chatModel"
	"github.com/paperchat/paperchat/internal/domain/docModel"
	"github.com/paperchat/paperchat/pkg/logx"
)

var inMemLogger = logx.NewLogger("InMem Stores")

// In-memory fallbacks used when postgres is unreachable at boot and by
// pipeline tests. Same contracts as the PG stores.

type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]docModel.Document
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[string]docModel.Document)}
}

func (s *InMemoryDocumentStore) Create(ctx context.Context, doc docModel.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.Id] = doc
	inMemLogger.Debug("saved document", "docId", doc.Id)
	return nil
}

func (s *InMemoryDocumentStore) GetByID(ctx context.Context, id string, userId string) (docModel.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok || doc.UserId != userId {
		return docModel.Document{}, ErrNotFound
	}
	return doc, nil
}

func (s *InMemoryDocumentStore) ListByUser(ctx context.Context, userId string) ([]docModel.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []docModel.Document
	for _, doc := range s.docs {
		if doc.UserId == userId {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

func (s *InMemoryDocumentStore) Delete(ctx context.Context, id string, userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok || doc.UserId != userId {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *InMemoryDocumentStore) UpdateStatus(ctx context.Context, id string, status docModel.UploadStatus, pageCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	doc.PageCount = pageCount
	s.docs[id] = doc
	return nil
}

func (s *InMemoryDocumentStore) GetStatus(ctx context.Context, id string, userId string) (docModel.UploadStatus, error) {
	doc, err := s.GetByID(ctx, id, userId)
	if err != nil {
		return "", err
	}
	return doc.Status, nil
}

type InMemoryMessageStore struct {
	mu       sync.RWMutex
	messages map[string][]chatModel.Message // keyed by document id
}

func InitInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{messages: make(map[string][]chatModel.Message)}
}

func (s *InMemoryMessageStore) Create(ctx context.Context, msg chatModel.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.DocumentId] = append(s.messages[msg.DocumentId], msg)
	return nil
}

// newestFirst returns a copy sorted newest first, ties broken by id so
// paging is stable.
func (s *InMemoryMessageStore) newestFirst(docId string) []chatModel.Message {
	src := s.messages[docId]
	out := make([]chatModel.Message, len(src))
	copy(out, src)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Id > out[j].Id
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *InMemoryMessageStore) ListByDocument(ctx context.Context, docId string, limit int, cursor string) ([]chatModel.Message, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.newestFirst(docId)
	start := 0
	if cursor != "" {
		start = -1
		for i, m := range all {
			if m.Id == cursor {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, "", ErrNotFound
		}
	}

	page := all[start:]
	nextCursor := ""
	if len(page) > limit {
		nextCursor = page[limit].Id
		page = page[:limit]
	}
	return page, nextCursor, nil
}

func (s *InMemoryMessageStore) RecentWindow(ctx context.Context, docId string, n int) ([]chatModel.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := s.newestFirst(docId)
	if len(recent) > n {
		recent = recent[:n]
	}
	// flip back to ascending
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}

func (s *InMemoryMessageStore) DeleteByDocument(ctx context.Context, docId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, docId)
	return nil
}

type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]string)}
}

func (s *InMemorySessionStore) Resolve(ctx context.Context, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userId, ok := s.sessions[token]
	if !ok {
		return "", ErrNotFound
	}
	return userId, nil
}

func (s *InMemorySessionStore) Put(ctx context.Context, token string, userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userId
	return nil
}
