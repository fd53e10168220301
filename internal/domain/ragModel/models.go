package ragModel

import "encoding/json"

// Document is a stored knowledge base entry. Every row carries an embedding of
// config.EmbeddingDimensions - a zero vector when no embedding model is active.
type Document struct {
	Id        string          `json:"id"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Embedding []float32       `json:"-"`
}

// DocumentSummary is the listing projection - no embedding payload.
type DocumentSummary struct {
	Id       string          `json:"id"`
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// RAGChunk is a single search hit. Score is cosine similarity in vector mode
// and a fixed constant in lexical fallback mode - the two are not comparable.
type RAGChunk struct {
	Id      string  `json:"id"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// ImportStatus describes the one in-flight (or last completed) bulk import.
type ImportStatus struct {
	TotalDocuments     int    `json:"total_documents"`
	ProcessedDocuments int    `json:"processed_documents"`
	Errors             int    `json:"errors"`
	IsProcessing       bool   `json:"is_processing"`
	CurrentFile        string `json:"current_file"`
	Message            string `json:"message"`
}

// ImportRecord is one entry of a bulk upload (JSON array or NDJSON form).
type ImportRecord struct {
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}
