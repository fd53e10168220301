package rag_test

import (
	"context"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
)

// MockDocumentStore implements rag.DocumentStore
type MockDocumentStore struct {
	// Control fields to simulate different behaviors
	OnInsert            func(ctx context.Context, doc ragModel.Document) error
	OnUpdate            func(ctx context.Context, doc ragModel.Document) (bool, error)
	OnDelete            func(ctx context.Context, id string) error
	OnList              func(ctx context.Context, limit, offset int) ([]ragModel.DocumentSummary, int64, error)
	OnSearchByVector    func(ctx context.Context, vector []float32, limit int) ([]ragModel.RAGChunk, error)
	OnSearchBySubstring func(ctx context.Context, query string, limit int) ([]ragModel.RAGChunk, error)

	InsertedDocs []ragModel.Document
}

func (m *MockDocumentStore) Insert(ctx context.Context, doc ragModel.Document) error {
	m.InsertedDocs = append(m.InsertedDocs, doc)
	if m.OnInsert != nil {
		return m.OnInsert(ctx, doc)
	}
	return nil
}

func (m *MockDocumentStore) Update(ctx context.Context, doc ragModel.Document) (bool, error) {
	if m.OnUpdate != nil {
		return m.OnUpdate(ctx, doc)
	}
	return true, nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	if m.OnDelete != nil {
		return m.OnDelete(ctx, id)
	}
	return nil
}

func (m *MockDocumentStore) List(ctx context.Context, limit, offset int) ([]ragModel.DocumentSummary, int64, error) {
	if m.OnList != nil {
		return m.OnList(ctx, limit, offset)
	}
	return []ragModel.DocumentSummary{}, 0, nil
}

func (m *MockDocumentStore) SearchByVector(ctx context.Context, vector []float32, limit int) ([]ragModel.RAGChunk, error) {
	if m.OnSearchByVector != nil {
		return m.OnSearchByVector(ctx, vector, limit)
	}
	return []ragModel.RAGChunk{{Id: "doc-1", Content: "vector hit", Score: 0.9}}, nil
}

func (m *MockDocumentStore) SearchBySubstring(ctx context.Context, query string, limit int) ([]ragModel.RAGChunk, error) {
	if m.OnSearchBySubstring != nil {
		return m.OnSearchBySubstring(ctx, query, limit)
	}
	return []ragModel.RAGChunk{{Id: "doc-1", Content: "lexical hit", Score: 0.5}}, nil
}

// MockSearchCache implements rag.SearchCache
type MockSearchCache struct {
	OnGet func(ctx context.Context, query string) ([]ragModel.RAGChunk, bool)

	PutCalls map[string][]ragModel.RAGChunk
}

func (m *MockSearchCache) Get(ctx context.Context, query string) ([]ragModel.RAGChunk, bool) {
	if m.OnGet != nil {
		return m.OnGet(ctx, query)
	}
	return nil, false
}

func (m *MockSearchCache) Put(ctx context.Context, query string, chunks []ragModel.RAGChunk) {
	if m.PutCalls == nil {
		m.PutCalls = map[string][]ragModel.RAGChunk{}
	}
	m.PutCalls[query] = chunks
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbed func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	v := make([]float32, 384)
	v[0] = 1
	return v, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimensions() int { return 384 }

func (m *MockEmbedder) Close() error { return nil }
