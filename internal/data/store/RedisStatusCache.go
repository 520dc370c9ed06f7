package store

import (
	"context"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/data/redisStore"
	"github.com/paperchat/paperchat/internal/domain/docModel"
	"github.com/paperchat/paperchat/pkg/logx"
)

// RedisStatusCache decorates a DocumentStore so the status-polling endpoint
// doesn't hammer postgres: status writes go through to both, status reads
// try redis first. Everything else is passed straight down.
type RedisStatusCache struct {
	DocumentStore
	cache  *redisStore.Store
	logger *logx.Logger
}

// WrapWithStatusCache returns the inner store untouched when redis is down.
func WrapWithStatusCache(ctx context.Context, inner DocumentStore) DocumentStore {
	cache := redisStore.GetRedisStore(ctx, config.RedisStatusDB)
	if cache == nil {
		return inner
	}
	return &RedisStatusCache{
		DocumentStore: inner,
		cache:         cache,
		logger:        logx.NewLogger("StatusCache"),
	}
}

func statusKey(docId string) string {
	return "docstatus:" + docId
}

func (s *RedisStatusCache) UpdateStatus(ctx context.Context, id string, status docModel.UploadStatus, pageCount int) error {
	if err := s.DocumentStore.UpdateStatus(ctx, id, status, pageCount); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, statusKey(id), string(status), config.RedisStatusTTL); err != nil {
		// Cache miss on the next poll falls back to postgres anyway.
		s.logger.Warn("status cache write failed", "docId", id, "error", err)
	}
	return nil
}

func (s *RedisStatusCache) GetStatus(ctx context.Context, id string, userId string) (docModel.UploadStatus, error) {
	// Ownership must be checked before serving from cache, the cache key is
	// not scoped by user.
	if _, err := s.DocumentStore.GetByID(ctx, id, userId); err != nil {
		return "", err
	}

	raw, err := s.cache.Get(ctx, statusKey(id))
	if err == nil {
		if status, parseErr := docModel.ParseUploadStatus(raw); parseErr == nil {
			return status, nil
		}
	} else if !s.cache.IsNil(err) {
		s.logger.Warn("status cache read failed", "docId", id, "error", err)
	}

	status, err := s.DocumentStore.GetStatus(ctx, id, userId)
	if err != nil {
		return "", err
	}
	if setErr := s.cache.Set(ctx, statusKey(id), string(status), config.RedisStatusTTL); setErr != nil {
		s.logger.Warn("status cache backfill failed", "docId", id, "error", setErr)
	}
	return status, nil
}

func (s *RedisStatusCache) Delete(ctx context.Context, id string, userId string) error {
	if err := s.DocumentStore.Delete(ctx, id, userId); err != nil {
		return err
	}
	if err := s.cache.Del(ctx, statusKey(id)); err != nil {
		s.logger.Warn("status cache invalidation failed", "docId", id, "error", err)
	}
	return nil
}

// TestStatusCache wires a miniredis-backed cache for tests.
func TestStatusCache(inner DocumentStore, cache *redisStore.Store) *RedisStatusCache {
	return &RedisStatusCache{
		DocumentStore: inner,
		cache:         cache,
		logger:        logx.NewLogger("test status cache"),
	}
}
