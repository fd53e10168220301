package llm

import (
	"context"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/chatModel"
)

// Provider generates a completion for a fully assembled message list.
// Prompt assembly stays with the caller so providers remain interchangeable.
type Provider interface {
	Complete(ctx context.Context, model string, messages []chatModel.Message, maxTokens int64) (string, error)
}
