package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/paperchat/paperchat/internal/data/redisStore"
	"github.com/paperchat/paperchat/internal/domain/docModel"
)

func newMiniStore(t *testing.T) (*redisStore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisStore.NewTestStore(client), mr
}

func TestRedisSessionStore_ResolveRoundTrip(t *testing.T) {
	inner, _ := newMiniStore(t)
	sessions := TestSessionStore(inner)

	if err := sessions.Put(context.Background(), "tok-123", "user-9"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	userId, err := sessions.Resolve(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if userId != "user-9" {
		t.Errorf("resolved %q, want user-9", userId)
	}
}

func TestRedisSessionStore_UnknownToken(t *testing.T) {
	inner, _ := newMiniStore(t)
	sessions := TestSessionStore(inner)

	if _, err := sessions.Resolve(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown token should be ErrNotFound, got %v", err)
	}
}

func TestStatusCache_WriteThroughAndCachedRead(t *testing.T) {
	cacheStore, mr := newMiniStore(t)
	inner := InitInMemoryDocumentStore()
	docs := TestStatusCache(inner, cacheStore)

	doc := docModel.Document{Id: "doc-1", UserId: "owner", Status: docModel.StatusProcessing}
	if err := docs.Create(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	if err := docs.UpdateStatus(context.Background(), "doc-1", docModel.StatusSuccess, 4); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// both layers see the new status
	if cached, err := mr.Get("docstatus:doc-1"); err != nil || cached != "SUCCESS" {
		t.Errorf("cache holds %q (%v), want SUCCESS", cached, err)
	}
	status, err := docs.GetStatus(context.Background(), "doc-1", "owner")
	if err != nil || status != docModel.StatusSuccess {
		t.Errorf("GetStatus = %s (%v), want SUCCESS", status, err)
	}
}

func TestStatusCache_OwnershipCheckedBeforeCache(t *testing.T) {
	cacheStore, mr := newMiniStore(t)
	inner := InitInMemoryDocumentStore()
	docs := TestStatusCache(inner, cacheStore)

	doc := docModel.Document{Id: "doc-1", UserId: "owner", Status: docModel.StatusProcessing}
	docs.Create(context.Background(), doc)
	mr.Set("docstatus:doc-1", "SUCCESS")

	// a cached status must never leak to a non-owner
	if _, err := docs.GetStatus(context.Background(), "doc-1", "intruder"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign status read should be ErrNotFound, got %v", err)
	}
}

func TestStatusCache_BackfillOnMiss(t *testing.T) {
	cacheStore, mr := newMiniStore(t)
	inner := InitInMemoryDocumentStore()
	docs := TestStatusCache(inner, cacheStore)

	doc := docModel.Document{Id: "doc-1", UserId: "owner", Status: docModel.StatusFailed}
	docs.Create(context.Background(), doc)

	status, err := docs.GetStatus(context.Background(), "doc-1", "owner")
	if err != nil || status != docModel.StatusFailed {
		t.Fatalf("GetStatus = %s (%v), want FAILED", status, err)
	}
	if cached, err := mr.Get("docstatus:doc-1"); err != nil || cached != "FAILED" {
		t.Errorf("cache should be backfilled after a miss, holds %q (%v)", cached, err)
	}
}

func TestStatusCache_DeleteInvalidates(t *testing.T) {
	cacheStore, mr := newMiniStore(t)
	inner := InitInMemoryDocumentStore()
	docs := TestStatusCache(inner, cacheStore)

	doc := docModel.Document{Id: "doc-1", UserId: "owner", Status: docModel.StatusSuccess}
	docs.Create(context.Background(), doc)
	mr.Set("docstatus:doc-1", "SUCCESS")

	if err := docs.Delete(context.Background(), "doc-1", "owner"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists("docstatus:doc-1") {
		t.Error("cached status should be dropped with the document")
	}
}
