package rag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/appError"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/internal/rag"
)

func TestSearch_Scenarios(t *testing.T) {
	tests := []struct {
		name            string
		nilEmbedder     bool
		setupMocks      func(st *MockDocumentStore, c *MockSearchCache, e *MockEmbedder)
		expectedContent string
		expectedErr     bool
		expectCachePut  bool
	}{
		{
			name: "Success_Vector_Search",
			setupMocks: func(st *MockDocumentStore, c *MockSearchCache, e *MockEmbedder) {
				st.OnSearchByVector = func(ctx context.Context, v []float32, limit int) ([]ragModel.RAGChunk, error) {
					return []ragModel.RAGChunk{{Id: "d1", Content: "buffer overflow writeup", Score: 0.87}}, nil
				}
			},
			expectedContent: "buffer overflow writeup",
			expectCachePut:  true,
		},
		{
			name: "Success_Cache_Hit_Skips_Store",
			setupMocks: func(st *MockDocumentStore, c *MockSearchCache, e *MockEmbedder) {
				c.OnGet = func(ctx context.Context, q string) ([]ragModel.RAGChunk, bool) {
					return []ragModel.RAGChunk{{Id: "d1", Content: "cached chunk", Score: 0.9}}, true
				}
				st.OnSearchByVector = func(ctx context.Context, v []float32, limit int) ([]ragModel.RAGChunk, error) {
					t.Error("store should not be queried on a cache hit")
					return nil, nil
				}
			},
			expectedContent: "cached chunk",
		},
		{
			name:        "Success_Lexical_Fallback",
			nilEmbedder: true,
			setupMocks: func(st *MockDocumentStore, c *MockSearchCache, e *MockEmbedder) {
				st.OnSearchBySubstring = func(ctx context.Context, q string, limit int) ([]ragModel.RAGChunk, error) {
					return []ragModel.RAGChunk{{Id: "d2", Content: "substring match", Score: 0.5}}, nil
				}
				st.OnSearchByVector = func(ctx context.Context, v []float32, limit int) ([]ragModel.RAGChunk, error) {
					t.Error("vector search must not run without an embedder")
					return nil, nil
				}
			},
			expectedContent: "substring match",
			expectCachePut:  true,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(st *MockDocumentStore, c *MockSearchCache, e *MockEmbedder) {
				e.OnEmbed = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("inference failed")
				}
			},
			expectedErr: true,
		},
		{
			name: "Failure_Store_Search",
			setupMocks: func(st *MockDocumentStore, c *MockSearchCache, e *MockEmbedder) {
				st.OnSearchByVector = func(ctx context.Context, v []float32, limit int) ([]ragModel.RAGChunk, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := &MockDocumentStore{}
			mCache := &MockSearchCache{}
			mEmbed := &MockEmbedder{}

			tt.setupMocks(mStore, mCache, mEmbed)

			var s rag.Service
			if tt.nilEmbedder {
				s = rag.NewService(mStore, mCache, nil)
			} else {
				s = rag.NewService(mStore, mCache, mEmbed)
			}

			chunks, err := s.Search(context.Background(), "how to find open ports", 3)

			if tt.expectedErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(chunks) != 1 || chunks[0].Content != tt.expectedContent {
				t.Errorf("chunks got %+v, want one with content %q", chunks, tt.expectedContent)
			}
			if tt.expectCachePut && len(mCache.PutCalls) != 1 {
				t.Errorf("expected one cache write, got %d", len(mCache.PutCalls))
			}
		})
	}
}

func TestSearch_NilCacheDisablesCaching(t *testing.T) {
	mStore := &MockDocumentStore{}
	s := rag.NewService(mStore, nil, &MockEmbedder{})

	chunks, err := s.Search(context.Background(), "reverse shell", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("expected one chunk, got %d", len(chunks))
	}
}

func TestSearchMode(t *testing.T) {
	if got := rag.NewService(&MockDocumentStore{}, nil, &MockEmbedder{}).Mode(); got != rag.VectorSearch {
		t.Errorf("with embedder: got %v, want %v", got, rag.VectorSearch)
	}
	if got := rag.NewService(&MockDocumentStore{}, nil, nil).Mode(); got != rag.LexicalSearch {
		t.Errorf("without embedder: got %v, want %v", got, rag.LexicalSearch)
	}
}

func TestAddDocument_Scenarios(t *testing.T) {
	t.Run("Vector_Mode_Stores_Embedding", func(t *testing.T) {
		mStore := &MockDocumentStore{}
		s := rag.NewService(mStore, nil, &MockEmbedder{})

		id, err := s.AddDocument(context.Background(), "nmap cheat sheet", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id == "" {
			t.Error("expected a generated id")
		}
		if len(mStore.InsertedDocs) != 1 {
			t.Fatalf("expected one insert, got %d", len(mStore.InsertedDocs))
		}
		if mStore.InsertedDocs[0].Embedding[0] != 1 {
			t.Error("expected the embedder's vector to be stored")
		}
	})

	t.Run("Lexical_Mode_Stores_Zero_Vector", func(t *testing.T) {
		mStore := &MockDocumentStore{}
		s := rag.NewService(mStore, nil, nil)

		if _, err := s.AddDocument(context.Background(), "hydra usage", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		doc := mStore.InsertedDocs[0]
		if len(doc.Embedding) != 384 {
			t.Fatalf("expected 384-wide vector, got %d", len(doc.Embedding))
		}
		for i, v := range doc.Embedding {
			if v != 0 {
				t.Fatalf("expected zero vector, found %f at %d", v, i)
			}
		}
	})

	t.Run("Embedding_Failure_Aborts_Insert", func(t *testing.T) {
		mStore := &MockDocumentStore{}
		mEmbed := &MockEmbedder{
			OnEmbed: func(ctx context.Context, text string) ([]float32, error) {
				return nil, errors.New("model unloaded")
			},
		}
		s := rag.NewService(mStore, nil, mEmbed)

		if _, err := s.AddDocument(context.Background(), "content", nil); err == nil {
			t.Fatal("expected an error")
		}
		if len(mStore.InsertedDocs) != 0 {
			t.Error("nothing should be inserted when embedding fails")
		}
	})
}

func TestUpdateDocument_NotFound(t *testing.T) {
	mStore := &MockDocumentStore{
		OnUpdate: func(ctx context.Context, doc ragModel.Document) (bool, error) {
			return false, nil
		},
	}
	s := rag.NewService(mStore, nil, nil)

	err := s.UpdateDocument(context.Background(), "missing-id", "new content", nil)
	if !errors.Is(err, appError.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
