package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// DocumentStore persists knowledge base rows in the documents table.
type DocumentStore struct {
	pool   *pgxpool.Pool
	logger *logger_i.Logger
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{
		pool:   pool,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func metadataText(metadata []byte) *string {
	if len(metadata) == 0 {
		return nil
	}
	s := string(metadata)
	return &s
}

func (s *DocumentStore) Insert(ctx context.Context, doc ragModel.Document) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, content, metadata, embedding) VALUES ($1, $2, $3, $4)`,
		doc.Id, doc.Content, metadataText(doc.Metadata), pgvector.NewVector(doc.Embedding))
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.Id, err)
	}
	return nil
}

// Update overwrites content, metadata and embedding. Returns false when the
// id does not exist.
func (s *DocumentStore) Update(ctx context.Context, doc ragModel.Document) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET content = $1, metadata = $2, embedding = $3 WHERE id = $4`,
		doc.Content, metadataText(doc.Metadata), pgvector.NewVector(doc.Embedding), doc.Id)
	if err != nil {
		return false, fmt.Errorf("updating document %s: %w", doc.Id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete is idempotent - removing an absent id is not an error.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}

// List returns one page newest-first plus the unpaginated total.
func (s *DocumentStore) List(ctx context.Context, limit, offset int) ([]ragModel.DocumentSummary, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, content, metadata FROM documents
		 ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	summaries := []ragModel.DocumentSummary{}
	for rows.Next() {
		var d ragModel.DocumentSummary
		var metadata *string
		if err := rows.Scan(&d.Id, &d.Content, &metadata); err != nil {
			return nil, 0, fmt.Errorf("scanning document row: %w", err)
		}
		if metadata != nil {
			d.Metadata = []byte(*metadata)
		}
		summaries = append(summaries, d)
	}
	return summaries, total, rows.Err()
}

// SearchByVector ranks rows by cosine distance to the query vector and
// reports similarity as 1 - distance, best match first.
func (s *DocumentStore) SearchByVector(ctx context.Context, vector []float32, limit int) ([]ragModel.RAGChunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, content, 1 - (embedding <=> $1) AS score FROM documents
		 ORDER BY embedding <=> $1 LIMIT $2`,
		pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows.Next, rows.Scan, rows.Err)
}

// SearchBySubstring is the degraded mode: case-insensitive substring match
// at a constant score, in the store's natural order.
func (s *DocumentStore) SearchBySubstring(ctx context.Context, query string, limit int) ([]ragModel.RAGChunk, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.pool.Query(ctx,
		`SELECT id, content, $3::float4 AS score FROM documents
		 WHERE LOWER(content) LIKE $1 LIMIT $2`,
		pattern, limit, float32(config.LexicalFallbackScore))
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows.Next, rows.Scan, rows.Err)
}

func scanChunks(next func() bool, scan func(...any) error, rowsErr func() error) ([]ragModel.RAGChunk, error) {
	chunks := []ragModel.RAGChunk{}
	for next() {
		var c ragModel.RAGChunk
		var score float64
		if err := scan(&c.Id, &c.Content, &score); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		c.Score = float32(score)
		chunks = append(chunks, c)
	}
	return chunks, rowsErr()
}
