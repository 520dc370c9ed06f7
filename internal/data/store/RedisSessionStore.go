package store

import (
	"context"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/data/redisStore"
	"github.com/paperchat/paperchat/pkg/logx"
)

// RedisSessionStore maps opaque bearer tokens to user ids. The auth provider
// mints the tokens out of band; this store only resolves them.
type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logx.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisSessionDB)
	if inner == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  inner,
		logger: logx.NewLogger("SessionStore"),
	}
}

func (s *RedisSessionStore) Resolve(ctx context.Context, token string) (string, error) {
	userId, err := s.store.Get(ctx, config.SessionKeyspace+token)
	if s.store.IsNil(err) {
		return "", ErrNotFound
	}
	if err != nil {
		s.logger.Error("session lookup failed", "error", err)
		return "", err
	}
	return userId, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, token string, userId string) error {
	// Sessions never expire here; revocation is the auth provider's job.
	return s.store.Set(ctx, config.SessionKeyspace+token, userId, 0)
}

// TestSessionStore wires a miniredis-backed store for tests.
func TestSessionStore(inner *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{store: inner, logger: logx.NewLogger("test sessions")}
}
