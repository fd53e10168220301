package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/chatModel"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// SessionStore persists chat sessions and their append-only messages.
type SessionStore struct {
	pool   *pgxpool.Pool
	logger *logger_i.Logger
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{
		pool:   pool,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func (s *SessionStore) CreateSession(ctx context.Context, id, userId, title string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (id, user_id, title) VALUES ($1, $2, $3)`,
		id, userId, title)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// SessionBelongsTo reports whether the session exists and is owned by userId.
func (s *SessionStore) SessionBelongsTo(ctx context.Context, sessionId, userId string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM chat_sessions WHERE id = $1 AND user_id = $2`,
		sessionId, userId).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking session ownership: %w", err)
	}
	return true, nil
}

func (s *SessionStore) ListSessions(ctx context.Context, userId string) ([]chatModel.ChatSession, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, COALESCE(title, ''), created_at, updated_at
		 FROM chat_sessions WHERE user_id = $1 ORDER BY updated_at DESC`, userId)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := []chatModel.ChatSession{}
	for rows.Next() {
		var cs chatModel.ChatSession
		if err := rows.Scan(&cs.Id, &cs.UserId, &cs.Title, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, cs)
	}
	return sessions, rows.Err()
}

// DeleteSession removes the session; messages cascade at the schema level.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionId string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, sessionId); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// TouchSession bumps updated_at, done once per completed assistant turn.
func (s *SessionStore) TouchSession(ctx context.Context, sessionId string) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE chat_sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`, sessionId); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

func (s *SessionStore) AddMessage(ctx context.Context, id, sessionId string, role chatModel.Role, content string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content) VALUES ($1, $2, $3, $4)`,
		id, sessionId, string(role), content)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// ListMessages returns the full history in chronological order.
func (s *SessionStore) ListMessages(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM chat_messages WHERE session_id = $1 ORDER BY created_at ASC`, sessionId)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	messages := []chatModel.ChatMessage{}
	for rows.Next() {
		var m chatModel.ChatMessage
		var role string
		if err := rows.Scan(&m.Id, &m.SessionId, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		m.Role = chatModel.Role(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
