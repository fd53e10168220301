//go:build cgo

package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// MiniLMEmbedder runs all-MiniLM-L6-v2 through ONNX Runtime. Tensors are
// allocated once and reused, so inference is serialized behind a mutex.
type MiniLMEmbedder struct {
	session   *ort.AdvancedSession
	tokenizer *WordTokenizer
	logger    *logger_i.Logger

	inputIds      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	tokenTypeIds  *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// NewMiniLMEmbedder loads the model at modelPath. Any failure here is
// recoverable at the call site: the retrieval layer falls back to
// lexical search when no embedder is available.
func NewMiniLMEmbedder(modelPath string) (*MiniLMEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initializing onnx runtime: %w", err)
	}

	tokenizer := &WordTokenizer{}
	blankIds, blankMask, blankTypes := tokenizer.Tokenize("", config.EmbeddingMaxTokens)

	shape := ort.NewShape(1, int64(config.EmbeddingMaxTokens))
	inputIds, err := ort.NewTensor(shape, blankIds)
	if err != nil {
		return nil, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	attentionMask, err := ort.NewTensor(shape, blankMask)
	if err != nil {
		inputIds.Destroy()
		return nil, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	tokenTypeIds, err := ort.NewTensor(shape, blankTypes)
	if err != nil {
		inputIds.Destroy()
		attentionMask.Destroy()
		return nil, fmt.Errorf("creating token_type_ids tensor: %w", err)
	}
	output, err := ort.NewTensor(ort.NewShape(1, int64(config.EmbeddingDimensions)),
		make([]float32, config.EmbeddingDimensions))
	if err != nil {
		inputIds.Destroy()
		attentionMask.Destroy()
		tokenTypeIds.Destroy()
		return nil, fmt.Errorf("creating output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{inputIds, attentionMask, tokenTypeIds},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		inputIds.Destroy()
		attentionMask.Destroy()
		tokenTypeIds.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("creating onnx session: %w", err)
	}

	return &MiniLMEmbedder{
		session:       session,
		tokenizer:     tokenizer,
		logger:        logger_i.NewLogger("MiniLMEmbedder"),
		inputIds:      inputIds,
		attentionMask: attentionMask,
		tokenTypeIds:  tokenTypeIds,
		output:        output,
	}, nil
}

func (e *MiniLMEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids, mask, types := e.tokenizer.Tokenize(text, config.EmbeddingMaxTokens)
	copy(e.inputIds.GetData(), ids)
	copy(e.attentionMask.GetData(), mask)
	copy(e.tokenTypeIds.GetData(), types)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("embedding inference: %w", err)
	}

	vector := make([]float32, config.EmbeddingDimensions)
	copy(vector, e.output.GetData()[:config.EmbeddingDimensions])
	normalizeL2(vector)
	return vector, nil
}

// EmbedBatch runs the texts through the session one at a time; the
// pre-allocated tensors only hold a single input.
func (e *MiniLMEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

func (e *MiniLMEmbedder) Dimensions() int {
	return config.EmbeddingDimensions
}

func (e *MiniLMEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []ort.ArbitraryTensor{e.inputIds, e.attentionMask, e.tokenTypeIds, e.output} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	e.inputIds, e.attentionMask, e.tokenTypeIds, e.output = nil, nil, nil, nil
	return err
}

// normalizeL2 scales the vector in place to unit length so that the
// database's cosine distance matches dot-product ordering.
func normalizeL2(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
