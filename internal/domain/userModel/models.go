package userModel

import "time"

const (
	RoleUser   = "user"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

type User struct {
	Id              string     `json:"id"`
	Username        string     `json:"username"`
	Fullname        string     `json:"fullname,omitempty"`
	Email           string     `json:"email,omitempty"`
	PasswordHash    string     `json:"-"`
	Role            string     `json:"role"`
	EmailVerified   bool       `json:"email_verified"`
	SubscriptionEnd *time.Time `json:"subscription_end,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Privileged reports whether the role bypasses the email verification gate.
func (u User) Privileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// AIModel is a completion model exposed to clients. ApiModelName is the
// provider-side identifier, DisplayName what the UI shows.
type AIModel struct {
	Id           string    `json:"id"`
	ApiModelName string    `json:"api_model_name"`
	DisplayName  string    `json:"display_name"`
	Provider     string    `json:"provider"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
