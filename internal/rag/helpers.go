package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/internal/metrics"
)

// executeEmbeddingStep returns the vector for text. In lexical mode (or for
// blank input) it returns the zero vector so every row keeps a uniform
// vector column.
func (s *service) executeEmbeddingStep(ctx context.Context, text string) ([]float32, error) {
	if s.mode == LexicalSearch || text == "" {
		return make([]float32, config.EmbeddingDimensions), nil
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	return vector, nil
}

func (s *service) executeCacheCheckStep(ctx context.Context, query string) ([]ragModel.RAGChunk, bool) {
	if s.cache == nil {
		return nil, false
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	return s.cache.Get(ctx, query)
}

func (s *service) executeSearchStep(ctx context.Context, query string, topK int) ([]ragModel.RAGChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_search", time.Since(start)) }()

	if s.mode == LexicalSearch {
		return s.store.SearchBySubstring(ctx, query, topK)
	}

	vector, err := s.executeEmbeddingStep(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.store.SearchByVector(ctx, vector, topK)
}
