package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/data/redisStore"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// RedisSearchCache memoizes search results keyed by a stable hash of the raw
// query text. No normalization is applied - "Foo" and "foo " are different
// entries. Entries expire by TTL only; document writes do not purge them.
type RedisSearchCache struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisSearchCache returns the redis-backed cache, or nil when redis is
// offline - the engine runs uncached in that case.
func GetRedisSearchCache(ctx context.Context) *RedisSearchCache {
	inner := redisStore.GetRedisStore(ctx, config.RedisSearchCache)
	if inner == nil {
		return nil
	}
	return &RedisSearchCache{
		store:  inner,
		logger: logger_i.NewLogger("SearchCache"),
	}
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "search:" + hex.EncodeToString(sum[:])
}

func (c *RedisSearchCache) Get(ctx context.Context, query string) ([]ragModel.RAGChunk, bool) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	val, err := c.store.Get(ctx, cacheKey(query))
	if c.store.IsNil(err) {
		return nil, false
	} else if err != nil {
		log.Error("Cache lookup failed", "error", err)
		return nil, false
	}

	var chunks []ragModel.RAGChunk
	if err := json.Unmarshal([]byte(val), &chunks); err != nil {
		log.Error("Corrupt cache entry, dropping", "error", err)
		_ = c.store.Del(ctx, cacheKey(query))
		return nil, false
	}
	return chunks, true
}

func (c *RedisSearchCache) Put(ctx context.Context, query string, results []ragModel.RAGChunk) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	data, err := json.Marshal(results)
	if err != nil {
		log.Error("Error marshalling search results", "error", err)
		return
	}
	if err := c.store.Set(ctx, cacheKey(query), data, config.SearchCacheTTL); err != nil {
		log.Error("Failed to save search results to cache", "error", err)
	}
}

// TestSearchCache wires an injected redis store, for miniredis tests.
func TestSearchCache(store *redisStore.Store) *RedisSearchCache {
	return &RedisSearchCache{
		store:  store,
		logger: logger_i.NewLogger("test search cache"),
	}
}
