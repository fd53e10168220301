//go:build !cgo

package embedding

import (
	"context"
	"errors"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
)

var errNoCgo = errors.New("local embedding requires CGO_ENABLED=1 and the onnxruntime shared library")

// MiniLMEmbedder needs CGO for ONNX Runtime. Without it the constructor
// fails and the retrieval layer degrades to lexical search.
type MiniLMEmbedder struct{}

func NewMiniLMEmbedder(_ string) (*MiniLMEmbedder, error) {
	return nil, errNoCgo
}

func (e *MiniLMEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errNoCgo
}

func (e *MiniLMEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errNoCgo
}

func (e *MiniLMEmbedder) Dimensions() int { return config.EmbeddingDimensions }

func (e *MiniLMEmbedder) Close() error { return nil }
