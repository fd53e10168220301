package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/appError"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/chatModel"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/userModel"
	"github.com/krypton-oss/kryptonsec-api/internal/metrics"
	"github.com/krypton-oss/kryptonsec-api/internal/rag"
	"github.com/krypton-oss/kryptonsec-api/internal/rag/llm"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// SessionStore is the chat persistence contract, satisfied by the
// postgres package.
type SessionStore interface {
	CreateSession(ctx context.Context, id, userId, title string) error
	SessionBelongsTo(ctx context.Context, sessionId, userId string) (bool, error)
	ListSessions(ctx context.Context, userId string) ([]chatModel.ChatSession, error)
	DeleteSession(ctx context.Context, sessionId string) error
	TouchSession(ctx context.Context, sessionId string) error
	AddMessage(ctx context.Context, id, sessionId string, role chatModel.Role, content string) error
	ListMessages(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error)
}

// UserStore resolves the caller for access gating.
type UserStore interface {
	GetByID(ctx context.Context, id string) (userModel.User, error)
}

// Orchestrator runs one chat turn end to end: gate the caller, resolve
// the session, retrieve context, call the completion provider, persist
// both turns.
type Orchestrator interface {
	Turn(ctx context.Context, userId, message, sessionId, model string) (answer string, resolvedSessionId string, err error)
	ListSessions(ctx context.Context, userId string) ([]chatModel.ChatSession, error)
	SessionMessages(ctx context.Context, userId, sessionId string) ([]chatModel.ChatMessage, error)
	DeleteSession(ctx context.Context, userId, sessionId string) error
}

type orchestrator struct {
	sessions  SessionStore
	users     UserStore
	retriever rag.Service
	provider  llm.Provider
	logger    *logger_i.Logger
}

func NewOrchestrator(sessions SessionStore, users UserStore, retriever rag.Service, provider llm.Provider) Orchestrator {
	return &orchestrator{
		sessions:  sessions,
		users:     users,
		retriever: retriever,
		provider:  provider,
		logger:    logger_i.NewLogger("Chat Orchestrator :"),
	}
}

func (o *orchestrator) Turn(ctx context.Context, userId, message, sessionId, model string) (string, string, error) {
	start := time.Now()
	status := "error"
	defer func() { metrics.CaptureChatTurnMetrics(status, time.Since(start)) }()

	if err := o.gateUser(ctx, userId); err != nil {
		return "", "", err
	}

	chunks, err := o.retriever.Search(ctx, message, config.RAGTopK)
	if err != nil {
		return "", "", fmt.Errorf("retrieving context: %w", err)
	}

	sessionId, err = o.resolveSession(ctx, userId, sessionId, message)
	if err != nil {
		return "", "", err
	}

	if err := o.sessions.AddMessage(ctx, utils.GetNewUUID(), sessionId, chatModel.RoleUser, message); err != nil {
		return "", "", fmt.Errorf("persisting user turn: %w", err)
	}

	// history already contains the turn just written, so nothing extra is
	// appended before the provider call
	history, err := o.sessions.ListMessages(ctx, sessionId)
	if err != nil {
		return "", "", fmt.Errorf("loading history: %w", err)
	}

	completionCtx, cancel := context.WithTimeout(ctx, config.ChatCompletionTimeout)
	defer cancel()

	answer, err := o.provider.Complete(completionCtx, model, assembleMessages(chunks, history), config.MaxCompletionTokens)
	if err != nil {
		return "", "", err
	}

	if err := o.sessions.AddMessage(ctx, utils.GetNewUUID(), sessionId, chatModel.RoleAssistant, answer); err != nil {
		return "", "", fmt.Errorf("persisting assistant turn: %w", err)
	}
	if err := o.sessions.TouchSession(ctx, sessionId); err != nil {
		o.logger.Warn("failed to bump session timestamp", "sessionId", sessionId, "error", err)
	}

	status = "ok"
	return answer, sessionId, nil
}

// gateUser enforces the access rules for chat: the account must exist,
// be email-verified (editors and admins are exempt), and hold an
// unexpired subscription.
func (o *orchestrator) gateUser(ctx context.Context, userId string) error {
	user, err := o.users.GetByID(ctx, userId)
	if err != nil {
		return err
	}
	if !user.EmailVerified && !user.Privileged() {
		return appError.ErrUnverified
	}
	if user.SubscriptionEnd == nil || user.SubscriptionEnd.Before(time.Now()) {
		return appError.ErrSubscriptionRequired
	}
	return nil
}

// resolveSession validates an explicit session id against its owner, or
// creates a fresh session titled with the opening words of the message.
func (o *orchestrator) resolveSession(ctx context.Context, userId, sessionId, message string) (string, error) {
	if sessionId != "" {
		owned, err := o.sessions.SessionBelongsTo(ctx, sessionId, userId)
		if err != nil {
			return "", fmt.Errorf("checking session: %w", err)
		}
		if !owned {
			return "", fmt.Errorf("session %s: %w", sessionId, appError.ErrNotFound)
		}
		return sessionId, nil
	}

	newId := utils.GetNewUUID()
	if err := o.sessions.CreateSession(ctx, newId, userId, sessionTitle(message)); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return newId, nil
}

func sessionTitle(message string) string {
	runes := []rune(message)
	if len(runes) > config.SessionTitleLimit {
		runes = runes[:config.SessionTitleLimit]
	}
	return string(runes)
}

func assembleMessages(chunks []ragModel.RAGChunk, history []chatModel.ChatMessage) []chatModel.Message {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}

	messages := make([]chatModel.Message, 0, len(history)+1)
	messages = append(messages, chatModel.Message{
		Role:    chatModel.RoleSystem,
		Content: buildSystemPrompt(strings.Join(parts, "\n\n")),
	})
	for _, m := range history {
		messages = append(messages, chatModel.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

func (o *orchestrator) ListSessions(ctx context.Context, userId string) ([]chatModel.ChatSession, error) {
	return o.sessions.ListSessions(ctx, userId)
}

func (o *orchestrator) SessionMessages(ctx context.Context, userId, sessionId string) ([]chatModel.ChatMessage, error) {
	if err := o.requireOwnership(ctx, userId, sessionId); err != nil {
		return nil, err
	}
	return o.sessions.ListMessages(ctx, sessionId)
}

func (o *orchestrator) DeleteSession(ctx context.Context, userId, sessionId string) error {
	if err := o.requireOwnership(ctx, userId, sessionId); err != nil {
		return err
	}
	return o.sessions.DeleteSession(ctx, sessionId)
}

func (o *orchestrator) requireOwnership(ctx context.Context, userId, sessionId string) error {
	owned, err := o.sessions.SessionBelongsTo(ctx, sessionId, userId)
	if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if !owned {
		return fmt.Errorf("session %s: %w", sessionId, appError.ErrNotFound)
	}
	return nil
}
