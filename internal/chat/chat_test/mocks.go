package chat_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/chatModel"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/userModel"
	"github.com/krypton-oss/kryptonsec-api/internal/rag"
)

// MockSessionStore implements chat.SessionStore
type MockSessionStore struct {
	OnSessionBelongsTo func(ctx context.Context, sessionId, userId string) (bool, error)
	OnListMessages     func(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error)

	CreatedSessions []string
	CreatedTitles   []string
	SavedMessages   []chatModel.ChatMessage
	Touched         []string
	Deleted         []string
}

func (m *MockSessionStore) CreateSession(ctx context.Context, id, userId, title string) error {
	m.CreatedSessions = append(m.CreatedSessions, id)
	m.CreatedTitles = append(m.CreatedTitles, title)
	return nil
}

func (m *MockSessionStore) SessionBelongsTo(ctx context.Context, sessionId, userId string) (bool, error) {
	if m.OnSessionBelongsTo != nil {
		return m.OnSessionBelongsTo(ctx, sessionId, userId)
	}
	return true, nil
}

func (m *MockSessionStore) ListSessions(ctx context.Context, userId string) ([]chatModel.ChatSession, error) {
	return []chatModel.ChatSession{}, nil
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionId string) error {
	m.Deleted = append(m.Deleted, sessionId)
	return nil
}

func (m *MockSessionStore) TouchSession(ctx context.Context, sessionId string) error {
	m.Touched = append(m.Touched, sessionId)
	return nil
}

func (m *MockSessionStore) AddMessage(ctx context.Context, id, sessionId string, role chatModel.Role, content string) error {
	m.SavedMessages = append(m.SavedMessages, chatModel.ChatMessage{
		Id: id, SessionId: sessionId, Role: role, Content: content,
	})
	return nil
}

func (m *MockSessionStore) ListMessages(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error) {
	if m.OnListMessages != nil {
		return m.OnListMessages(ctx, sessionId)
	}
	return m.SavedMessages, nil
}

// MockUserStore implements chat.UserStore
type MockUserStore struct {
	OnGetByID func(ctx context.Context, id string) (userModel.User, error)
}

func activeSubscriber(id string) userModel.User {
	end := time.Now().Add(24 * time.Hour)
	return userModel.User{
		Id:              id,
		Username:        "tester",
		Role:            userModel.RoleUser,
		EmailVerified:   true,
		SubscriptionEnd: &end,
	}
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (userModel.User, error) {
	if m.OnGetByID != nil {
		return m.OnGetByID(ctx, id)
	}
	return activeSubscriber(id), nil
}

// MockRetriever implements rag.Service
type MockRetriever struct {
	OnSearch func(ctx context.Context, query string, topK int) ([]ragModel.RAGChunk, error)
}

func (m *MockRetriever) Search(ctx context.Context, query string, topK int) ([]ragModel.RAGChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, topK)
	}
	return []ragModel.RAGChunk{{Id: "d1", Content: "retrieved context", Score: 0.8}}, nil
}

func (m *MockRetriever) AddDocument(ctx context.Context, content string, metadata json.RawMessage) (string, error) {
	return "", nil
}

func (m *MockRetriever) UpdateDocument(ctx context.Context, id, content string, metadata json.RawMessage) error {
	return nil
}

func (m *MockRetriever) DeleteDocument(ctx context.Context, id string) error { return nil }

func (m *MockRetriever) ListDocuments(ctx context.Context, limit, offset int) ([]ragModel.DocumentSummary, int64, error) {
	return nil, 0, nil
}

func (m *MockRetriever) Mode() rag.SearchMode { return rag.VectorSearch }

// MockProvider implements llm.Provider
type MockProvider struct {
	OnComplete func(ctx context.Context, model string, messages []chatModel.Message, maxTokens int64) (string, error)

	LastMessages []chatModel.Message
	LastModel    string
}

func (m *MockProvider) Complete(ctx context.Context, model string, messages []chatModel.Message, maxTokens int64) (string, error) {
	m.LastMessages = messages
	m.LastModel = model
	if m.OnComplete != nil {
		return m.OnComplete(ctx, model, messages, maxTokens)
	}
	return "mentor answer", nil
}
