package api

import (
	"encoding/json"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
)

// requests---------------------

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Fullname string `json:"fullname"`
	Email    string `json:"email" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionId string `json:"session_id,omitempty"`
	Model     string `json:"model,omitempty"`
}

type CreateDocumentRequest struct {
	Content  string          `json:"content" validate:"required"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit,omitempty"`
}

// responses--------------------

type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	SessionId string `json:"session_id"`
}

type CreateDocumentResponse struct {
	Id      string `json:"id"`
	Message string `json:"message"`
}

type DocumentListResponse struct {
	Documents []ragModel.DocumentSummary `json:"documents"`
	Total     int64                      `json:"total"`
	Limit     int                        `json:"limit"`
	Offset    int                        `json:"offset"`
}

type SearchResponse struct {
	Results []ragModel.RAGChunk `json:"results"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Document updated"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"Session not found"`
	Details string `json:"details,omitempty"`
}
