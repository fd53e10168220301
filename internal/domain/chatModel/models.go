package chatModel

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatSession groups the messages of one conversation. Owned exclusively by
// the creating user - every access path must check UserId.
type ChatSession struct {
	Id        string    `json:"id"`
	UserId    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one turn of a session. Append-only, ordered by CreatedAt.
type ChatMessage struct {
	Id        string    `json:"id"`
	SessionId string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is the role-tagged unit sent to the completion provider.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
