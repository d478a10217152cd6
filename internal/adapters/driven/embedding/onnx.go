// Package embedding provides Embedder implementations backed by a local
// ONNX Runtime session, plus an LRU cache and the ServiceFactory wiring.
package embedding

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/daulet/tokenizers"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/netest/netest-core/internal/core/ports/driven"
)

// defaultBatchSize keeps memory and inference latency bounded on modest
// worker_pool_size deployments.
const defaultBatchSize = 32

// OnnxEmbedder wraps an ONNX Runtime session and a HuggingFace tokenizer
// for the multilingual sentence-transformer named by embedder.model_id.
// It is loaded once at process start and shared across requests, per
// spec.md's explicit-singleton design note.
type OnnxEmbedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *tokenizers.Tokenizer
	model      string
	dimensions int
	maxSeqLen  int
	batchSize  int
}

var _ driven.Embedder = (*OnnxEmbedder)(nil)

// NewOnnxEmbedder loads model.onnx + tokenizer.json from modelPath/tokenizerPath.
// maxSeqLen caps token length per input; dimensions is the model's known
// output width (there is no reliable way to introspect it from the ONNX
// graph alone, so it is passed in by the caller/config).
func NewOnnxEmbedder(modelPath, tokenizerPath, model string, dimensions, maxSeqLen int) (*OnnxEmbedder, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("embedding model not found at %s: %w", modelPath, err)
	}
	if _, err := os.Stat(tokenizerPath); err != nil {
		return nil, fmt.Errorf("tokenizer not found at %s: %w", tokenizerPath, err)
	}

	if libPath := os.Getenv("ONNXRUNTIME_LIB_PATH"); libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("init onnxruntime: %w", err)
	}

	numThreads := runtime.NumCPU()
	if numThreads > 4 {
		numThreads = 4
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer opts.Destroy()

	if err := opts.SetIntraOpNumThreads(numThreads); err != nil {
		return nil, fmt.Errorf("set intra-op threads: %w", err)
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("set inter-op threads: %w", err)
	}

	inputNames := []string{"input_ids", "attention_mask", "token_type_ids"}
	outputNames := []string{"last_hidden_state"}

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	tk, err := tokenizers.FromFile(tokenizerPath)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	if dimensions <= 0 {
		dimensions = 384
	}
	if maxSeqLen <= 0 {
		maxSeqLen = 256
	}

	return &OnnxEmbedder{
		session:    session,
		tokenizer:  tk,
		model:      model,
		dimensions: dimensions,
		maxSeqLen:  maxSeqLen,
		batchSize:  defaultBatchSize,
	}, nil
}

// NewOnnxEmbedderFromDir mirrors the modelDir-with-two-well-known-filenames
// convention: <modelDir>/model.onnx and <modelDir>/tokenizer.json.
func NewOnnxEmbedderFromDir(modelDir, model string, dimensions, maxSeqLen int) (*OnnxEmbedder, error) {
	return NewOnnxEmbedder(
		filepath.Join(modelDir, "model.onnx"),
		filepath.Join(modelDir, "tokenizer.json"),
		model, dimensions, maxSeqLen,
	)
}

// Dimensions returns the embedding vector size.
func (e *OnnxEmbedder) Dimensions() int { return e.dimensions }

// Model returns the model identifier, recorded on Session for reproducibility.
func (e *OnnxEmbedder) Model() string { return e.model }

// HealthCheck verifies the session is usable by running a trivial encode.
func (e *OnnxEmbedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, []string{"ping"})
	return err
}

// Close releases the ONNX session and tokenizer.
func (e *OnnxEmbedder) Close() error {
	if e.session != nil {
		e.session.Destroy()
	}
	if e.tokenizer != nil {
		e.tokenizer.Close()
	}
	return nil
}

// Embed generates one L2-normalized embedding per input text, in order.
func (e *OnnxEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embedBatch(texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", i, end, err)
		}
		results = append(results, batch...)
	}
	return results, nil
}

type encoded struct {
	ids  []int64
	mask []int64
}

func (e *OnnxEmbedder) embedBatch(texts []string) ([][]float32, error) {
	batchSize := len(texts)

	all := make([]encoded, batchSize)
	maxLen := 0
	for i, text := range texts {
		enc := e.tokenizer.EncodeWithOptions(text, true, tokenizers.WithReturnAttentionMask())
		ids := enc.IDs
		if len(ids) > e.maxSeqLen {
			ids = ids[:e.maxSeqLen]
		}
		ids64 := make([]int64, len(ids))
		mask64 := make([]int64, len(ids))
		for j, v := range ids {
			ids64[j] = int64(v)
			mask64[j] = 1
		}
		if len(enc.AttentionMask) >= len(ids) {
			for j := range ids64 {
				mask64[j] = int64(enc.AttentionMask[j])
			}
		}
		all[i] = encoded{ids: ids64, mask: mask64}
		if len(ids64) > maxLen {
			maxLen = len(ids64)
		}
	}
	if maxLen == 0 {
		return nil, fmt.Errorf("all inputs tokenized to zero length")
	}

	flatIDs := make([]int64, batchSize*maxLen)
	flatMask := make([]int64, batchSize*maxLen)
	flatType := make([]int64, batchSize*maxLen)
	for i, enc := range all {
		copy(flatIDs[i*maxLen:], enc.ids)
		copy(flatMask[i*maxLen:], enc.mask)
	}
	shape := ort.NewShape(int64(batchSize), int64(maxLen))

	inputIDs, err := ort.NewTensor(shape, flatIDs)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer inputIDs.Destroy()

	attnMask, err := ort.NewTensor(shape, flatMask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer attnMask.Destroy()

	typeIDs, err := ort.NewTensor(shape, flatType)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typeIDs.Destroy()

	inputs := []ort.Value{inputIDs, attnMask, typeIDs}
	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	defer func() {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}
	}()

	hiddenTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type, want *ort.Tensor[float32]")
	}
	hidden := hiddenTensor.GetData()
	seqLen := int(hiddenTensor.GetShape()[1])
	dim := e.dimensions

	embeddings := make([][]float32, batchSize)
	for i := 0; i < batchSize; i++ {
		vec := make([]float32, dim)
		base := i * seqLen * dim
		for d := 0; d < dim; d++ {
			vec[d] = hidden[base+d]
		}
		l2Normalize(vec)
		embeddings[i] = vec
	}

	return embeddings, nil
}

func l2Normalize(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm < 1e-10 {
		return
	}
	inv := float32(1.0 / norm)
	for i := range v {
		v[i] *= inv
	}
}
