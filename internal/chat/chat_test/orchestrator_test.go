package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/krypton-oss/kryptonsec-api/internal/chat"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/appError"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/chatModel"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/userModel"
)

func newOrchestrator(s *MockSessionStore, u *MockUserStore, r *MockRetriever, p *MockProvider) chat.Orchestrator {
	return chat.NewOrchestrator(s, u, r, p)
}

func TestTurn_NewSession(t *testing.T) {
	sessions := &MockSessionStore{}
	provider := &MockProvider{}

	answer, sessionId, err := newOrchestrator(sessions, &MockUserStore{}, &MockRetriever{}, provider).
		Turn(context.Background(), "user-1", "how do I start with binary exploitation and pwn challenges", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "mentor answer" {
		t.Errorf("answer got %q", answer)
	}
	if len(sessions.CreatedSessions) != 1 || sessions.CreatedSessions[0] != sessionId {
		t.Errorf("expected one created session matching %q, got %v", sessionId, sessions.CreatedSessions)
	}
	if got := sessions.CreatedTitles[0]; got != "how do I start with binary exp" {
		t.Errorf("title should be the first 30 characters, got %q", got)
	}

	// user turn then assistant turn
	if len(sessions.SavedMessages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(sessions.SavedMessages))
	}
	if sessions.SavedMessages[0].Role != chatModel.RoleUser || sessions.SavedMessages[1].Role != chatModel.RoleAssistant {
		t.Errorf("persisted roles wrong: %v, %v", sessions.SavedMessages[0].Role, sessions.SavedMessages[1].Role)
	}
	if len(sessions.Touched) != 1 {
		t.Errorf("session timestamp should be bumped once, got %d", len(sessions.Touched))
	}
}

func TestTurn_PromptCarriesRetrievedContext(t *testing.T) {
	retriever := &MockRetriever{
		OnSearch: func(ctx context.Context, q string, topK int) ([]ragModel.RAGChunk, error) {
			if topK != 3 {
				t.Errorf("topK got %d, want 3", topK)
			}
			return []ragModel.RAGChunk{
				{Id: "a", Content: "first chunk", Score: 0.9},
				{Id: "b", Content: "second chunk", Score: 0.8},
			}, nil
		},
	}
	provider := &MockProvider{}

	_, _, err := newOrchestrator(&MockSessionStore{}, &MockUserStore{}, retriever, provider).
		Turn(context.Background(), "user-1", "question", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	system := provider.LastMessages[0]
	if system.Role != chatModel.RoleSystem {
		t.Fatalf("first message should be the system prompt, got role %v", system.Role)
	}
	if !strings.Contains(system.Content, "[CONTEXT BEGIN]\nfirst chunk\n\nsecond chunk\n[CONTEXT END]") {
		t.Error("retrieved chunks should be joined with blank lines inside the context block")
	}
	// the user turn is loaded back from history, never appended twice
	userTurns := 0
	for _, m := range provider.LastMessages[1:] {
		if m.Role == chatModel.RoleUser {
			userTurns++
		}
	}
	if userTurns != 1 {
		t.Errorf("expected exactly one user turn in the prompt, got %d", userTurns)
	}
}

func TestTurn_ExistingSession(t *testing.T) {
	sessions := &MockSessionStore{
		OnSessionBelongsTo: func(ctx context.Context, sessionId, userId string) (bool, error) {
			if sessionId != "sess-1" || userId != "user-1" {
				t.Errorf("ownership check got %s/%s", sessionId, userId)
			}
			return true, nil
		},
		OnListMessages: func(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error) {
			return []chatModel.ChatMessage{
				{Role: chatModel.RoleUser, Content: "earlier question"},
				{Role: chatModel.RoleAssistant, Content: "earlier answer"},
				{Role: chatModel.RoleUser, Content: "followup"},
			}, nil
		},
	}
	provider := &MockProvider{}

	_, sessionId, err := newOrchestrator(sessions, &MockUserStore{}, &MockRetriever{}, provider).
		Turn(context.Background(), "user-1", "followup", "sess-1", "custom/model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessionId != "sess-1" {
		t.Errorf("session id got %q", sessionId)
	}
	if len(sessions.CreatedSessions) != 0 {
		t.Error("no session should be created when one is supplied")
	}
	if provider.LastModel != "custom/model" {
		t.Errorf("model got %q", provider.LastModel)
	}
	// system prompt + 3 history turns
	if len(provider.LastMessages) != 4 {
		t.Errorf("expected 4 prompt messages, got %d", len(provider.LastMessages))
	}
}

func TestTurn_Gating(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name        string
		user        userModel.User
		expectedErr error
	}{
		{
			name: "Unverified_Email",
			user: userModel.User{Id: "u", Role: userModel.RoleUser, SubscriptionEnd: &future},

			expectedErr: appError.ErrUnverified,
		},
		{
			name:        "Missing_Subscription",
			user:        userModel.User{Id: "u", Role: userModel.RoleUser, EmailVerified: true},
			expectedErr: appError.ErrSubscriptionRequired,
		},
		{
			name:        "Expired_Subscription",
			user:        userModel.User{Id: "u", Role: userModel.RoleUser, EmailVerified: true, SubscriptionEnd: &expired},
			expectedErr: appError.ErrSubscriptionRequired,
		},
		{
			name:        "Admin_Skips_Verification",
			user:        userModel.User{Id: "u", Role: userModel.RoleAdmin, SubscriptionEnd: &future},
			expectedErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUserStore{
				OnGetByID: func(ctx context.Context, id string) (userModel.User, error) {
					return tt.user, nil
				},
			}
			_, _, err := newOrchestrator(&MockSessionStore{}, users, &MockRetriever{}, &MockProvider{}).
				Turn(context.Background(), "u", "msg", "", "")

			if tt.expectedErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("error got %v, want %v", err, tt.expectedErr)
			}
		})
	}
}

func TestTurn_ForeignSessionRejected(t *testing.T) {
	sessions := &MockSessionStore{
		OnSessionBelongsTo: func(ctx context.Context, sessionId, userId string) (bool, error) {
			return false, nil
		},
	}
	_, _, err := newOrchestrator(sessions, &MockUserStore{}, &MockRetriever{}, &MockProvider{}).
		Turn(context.Background(), "user-1", "msg", "someone-elses-session", "")
	if !errors.Is(err, appError.ErrNotFound) {
		t.Errorf("error got %v, want ErrNotFound", err)
	}
	if len(sessions.SavedMessages) != 0 {
		t.Error("nothing should be persisted for a rejected session")
	}
}

func TestTurn_ProviderFailureKeepsUserTurn(t *testing.T) {
	sessions := &MockSessionStore{}
	provider := &MockProvider{
		OnComplete: func(ctx context.Context, model string, messages []chatModel.Message, maxTokens int64) (string, error) {
			return "", appError.ErrProvider
		},
	}
	_, _, err := newOrchestrator(sessions, &MockUserStore{}, &MockRetriever{}, provider).
		Turn(context.Background(), "user-1", "msg", "", "")
	if !errors.Is(err, appError.ErrProvider) {
		t.Fatalf("error got %v, want ErrProvider", err)
	}
	// the user turn stays persisted even when the completion fails
	if len(sessions.SavedMessages) != 1 || sessions.SavedMessages[0].Role != chatModel.RoleUser {
		t.Errorf("expected only the user turn persisted, got %v", sessions.SavedMessages)
	}
	if len(sessions.Touched) != 0 {
		t.Error("session timestamp must not be bumped on failure")
	}
}

func TestSessionMessages_OwnershipEnforced(t *testing.T) {
	sessions := &MockSessionStore{
		OnSessionBelongsTo: func(ctx context.Context, sessionId, userId string) (bool, error) {
			return false, nil
		},
	}
	_, err := newOrchestrator(sessions, &MockUserStore{}, &MockRetriever{}, &MockProvider{}).
		SessionMessages(context.Background(), "user-1", "sess-9")
	if !errors.Is(err, appError.ErrNotFound) {
		t.Errorf("error got %v, want ErrNotFound", err)
	}
}

func TestDeleteSession_OwnershipEnforced(t *testing.T) {
	sessions := &MockSessionStore{}
	err := newOrchestrator(sessions, &MockUserStore{}, &MockRetriever{}, &MockProvider{}).
		DeleteSession(context.Background(), "user-1", "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions.Deleted) != 1 || sessions.Deleted[0] != "sess-1" {
		t.Errorf("expected sess-1 deleted, got %v", sessions.Deleted)
	}
}
