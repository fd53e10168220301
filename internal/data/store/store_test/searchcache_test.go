package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/data/redisStore"
	"github.com/krypton-oss/kryptonsec-api/internal/data/store"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
)

func newTestCache(t *testing.T) (*store.RedisSearchCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestSearchCache(redisStore.NewTestStore(client)), mr
}

func TestSearchCache_Roundtrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	chunks := []ragModel.RAGChunk{
		{Id: "d1", Content: "sql injection basics", Score: 0.91},
		{Id: "d2", Content: "union-based payloads", Score: 0.74},
	}

	cache.Put(ctx, "sqli walkthrough", chunks)

	got, found := cache.Get(ctx, "sqli walkthrough")
	if !found {
		t.Fatal("entry was cached but not found")
	}
	if len(got) != 2 || got[0].Id != "d1" || got[1].Score != chunks[1].Score {
		t.Errorf("roundtrip mismatch: got %+v", got)
	}
}

func TestSearchCache_MissAndKeySensitivity(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if _, found := cache.Get(ctx, "never stored"); found {
		t.Error("expected a miss for an unknown query")
	}

	cache.Put(ctx, "Foo", []ragModel.RAGChunk{{Id: "d1", Content: "c", Score: 0.5}})

	// keys hash the raw query text, no normalization
	if _, found := cache.Get(ctx, "foo"); found {
		t.Error("differently-cased query should not hit")
	}
	if _, found := cache.Get(ctx, "Foo "); found {
		t.Error("trailing whitespace should not hit")
	}
}

func TestSearchCache_EntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "stale query", []ragModel.RAGChunk{{Id: "d1", Content: "old", Score: 0.5}})

	mr.FastForward(config.SearchCacheTTL + time.Minute)

	if _, found := cache.Get(ctx, "stale query"); found {
		t.Error("entry should have expired with the TTL")
	}
}

func TestSearchCache_CorruptEntryDropped(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "query", []ragModel.RAGChunk{{Id: "d1", Content: "c", Score: 0.5}})

	// overwrite every key with garbage
	for _, key := range mr.Keys() {
		mr.Set(key, "{not json")
	}

	if _, found := cache.Get(ctx, "query"); found {
		t.Fatal("corrupt entry must read as a miss")
	}
	if len(mr.Keys()) != 0 {
		t.Error("corrupt entry should be deleted on read")
	}
}
