package rag

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/appError"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/internal/rag/embedding"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// SearchMode is fixed at construction. Vector search needs a working
// embedder; when none is available every query goes through the lexical
// fallback and writes store zero vectors.
type SearchMode string

const (
	VectorSearch  SearchMode = "vector"
	LexicalSearch SearchMode = "lexical"
)

// DocumentStore is the persistence contract the engine needs. The
// postgres package satisfies it.
type DocumentStore interface {
	Insert(ctx context.Context, doc ragModel.Document) error
	Update(ctx context.Context, doc ragModel.Document) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]ragModel.DocumentSummary, int64, error)
	SearchByVector(ctx context.Context, vector []float32, limit int) ([]ragModel.RAGChunk, error)
	SearchBySubstring(ctx context.Context, query string, limit int) ([]ragModel.RAGChunk, error)
}

// SearchCache holds recent search results keyed by raw query text. A nil
// cache disables caching without branching at every call site.
type SearchCache interface {
	Get(ctx context.Context, query string) ([]ragModel.RAGChunk, bool)
	Put(ctx context.Context, query string, chunks []ragModel.RAGChunk)
}

// Service is the retrieval surface the rest of the application calls.
// Handlers and the chat orchestrator never see the store or the embedder.
type Service interface {
	AddDocument(ctx context.Context, content string, metadata json.RawMessage) (string, error)
	UpdateDocument(ctx context.Context, id, content string, metadata json.RawMessage) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, limit, offset int) ([]ragModel.DocumentSummary, int64, error)
	Search(ctx context.Context, query string, topK int) ([]ragModel.RAGChunk, error)
	Mode() SearchMode
}

type service struct {
	store    DocumentStore
	cache    SearchCache
	embedder embedding.Embedder
	mode     SearchMode
	logger   *logger_i.Logger
}

// NewService wires the engine. Pass a nil embedder to run in lexical
// mode; pass a nil cache to skip result caching.
func NewService(store DocumentStore, cache SearchCache, em embedding.Embedder) Service {
	mode := VectorSearch
	if em == nil {
		mode = LexicalSearch
	}
	s := &service{
		store:    store,
		cache:    cache,
		embedder: em,
		mode:     mode,
		logger:   logger_i.NewLogger("RAG Engine :"),
	}
	s.logger.Info("retrieval engine ready", "mode", mode)
	return s
}

func (s *service) Mode() SearchMode {
	return s.mode
}

func (s *service) AddDocument(ctx context.Context, content string, metadata json.RawMessage) (string, error) {
	vector, err := s.executeEmbeddingStep(ctx, content)
	if err != nil {
		return "", err
	}
	doc := ragModel.Document{
		Id:        utils.GetNewUUID(),
		Content:   content,
		Metadata:  metadata,
		Embedding: vector,
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		return "", fmt.Errorf("storing document: %w", err)
	}
	return doc.Id, nil
}

func (s *service) UpdateDocument(ctx context.Context, id, content string, metadata json.RawMessage) error {
	vector, err := s.executeEmbeddingStep(ctx, content)
	if err != nil {
		return err
	}
	updated, err := s.store.Update(ctx, ragModel.Document{
		Id:        id,
		Content:   content,
		Metadata:  metadata,
		Embedding: vector,
	})
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if !updated {
		return fmt.Errorf("document %s: %w", id, appError.ErrNotFound)
	}
	return nil
}

func (s *service) DeleteDocument(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *service) ListDocuments(ctx context.Context, limit, offset int) ([]ragModel.DocumentSummary, int64, error) {
	return s.store.List(ctx, limit, offset)
}

// Search consults the cache first, then runs whichever variant the mode
// selects. Results are cached as returned; document writes do not
// invalidate earlier entries, stale hits age out with the TTL.
func (s *service) Search(ctx context.Context, query string, topK int) ([]ragModel.RAGChunk, error) {
	if topK <= 0 {
		topK = config.RAGTopK
	}

	if chunks, found := s.executeCacheCheckStep(ctx, query); found {
		return chunks, nil
	}

	chunks, err := s.executeSearchStep(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(ctx, query, chunks)
	}
	return chunks, nil
}
