// Package provider runs local embedding inference with hugot and the
// st-codesearch-distilroberta-base ONNX model. No network calls.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/fluxkit/precedent/domain/search"
)

const hugotBatchMax = 10

// ErrModelLoad indicates the ONNX model could not be located or loaded.
var ErrModelLoad = errors.New("provider: embedding model unavailable")

// ortSingleton holds the process-wide ONNX Runtime session and pipeline.
// ORT only allows one active session per process, so all HugotEmbedder
// instances must share it. The mutex serializes both initialization and
// inference (ORT is not thread-safe).
var ortSingleton struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	mu       sync.Mutex
	ready    bool
}

// HugotEmbedder generates semantic vectors locally via hugot.
//
// The model can come from two sources (checked in order):
//  1. Model files on disk: a subdirectory of modelDir containing tokenizer.json.
//  2. Statically embedded in the binary (build tag embed_model), extracted to
//     modelDir on first use.
//
// All instances share a single ONNX Runtime session because ORT only supports
// one active session per process.
type HugotEmbedder struct {
	modelDir string
	dim      int
	maxChars int
}

// NewHugotEmbedder creates a HugotEmbedder that looks for model files in
// modelDir and validates every produced vector against dim. Inputs longer
// than maxChars are truncated front-anchored before inference.
func NewHugotEmbedder(modelDir string, dim, maxChars int) *HugotEmbedder {
	return &HugotEmbedder{
		modelDir: modelDir,
		dim:      dim,
		maxChars: maxChars,
	}
}

// Available reports whether a usable model exists, either compiled into
// the binary (embed_model build tag) or present on disk in modelDir.
func (h *HugotEmbedder) Available() bool {
	if hasEmbeddedModel {
		return true
	}
	_, err := h.diskModelPath()
	return err == nil
}

// Dim returns the vector dimensionality this embedder produces.
func (h *HugotEmbedder) Dim() int { return h.dim }

// Embed generates the vector for a single text.
func (h *HugotEmbedder) Embed(ctx context.Context, text string) (search.Vector, error) {
	vectors, err := h.EmbedBatch(ctx, []string{text})
	if err != nil {
		return search.Vector{}, err
	}
	if len(vectors) != 1 {
		return search.Vector{}, fmt.Errorf("embed: expected 1 vector, got %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedBatch generates vectors for texts, splitting the work into chunks
// of at most 10 inputs per pipeline run. The result preserves input order.
func (h *HugotEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]search.Vector, error) {
	if len(texts) == 0 {
		return []search.Vector{}, nil
	}

	if err := h.initialize(); err != nil {
		return nil, err
	}

	vectors := make([]search.Vector, 0, len(texts))
	for start := 0; start < len(texts); start += hugotBatchMax {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+hugotBatchMax, len(texts))
		chunk, err := h.embedChunk(texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, chunk...)
	}

	return vectors, nil
}

func (h *HugotEmbedder) embedChunk(texts []string) ([]search.Vector, error) {
	truncated := make([]string, len(texts))
	for i, text := range texts {
		truncated[i] = Truncate(text, h.maxChars)
	}

	// Hold the singleton mutex for inference. ORT is not thread-safe.
	ortSingleton.mu.Lock()
	defer ortSingleton.mu.Unlock()

	result, err := ortSingleton.pipeline.RunPipeline(truncated)
	if err != nil {
		return nil, fmt.Errorf("run embedding pipeline: %w", err)
	}

	vectors := make([]search.Vector, len(result.Embeddings))
	for i, vec32 := range result.Embeddings {
		vec64 := make([]float64, len(vec32))
		for j, v := range vec32 {
			vec64[j] = float64(v)
		}
		vec, err := search.NewVector(vec64, h.dim)
		if err != nil {
			return nil, fmt.Errorf("embedding %d: %w", i, err)
		}
		// The pipeline normalizes already; renormalizing is a no-op then
		// and keeps the unit-length contract if it ever does not.
		vectors[i] = vec.Normalized()
	}

	return vectors, nil
}

func (h *HugotEmbedder) initialize() error {
	ortSingleton.mu.Lock()
	defer ortSingleton.mu.Unlock()

	if ortSingleton.ready {
		return nil
	}

	session, err := newHugotSession()
	if err != nil {
		return fmt.Errorf("%w: create hugot session: %w", ErrModelLoad, err)
	}

	modelPath, err := h.resolveModelPath()
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "pattern-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("%w: create feature extraction pipeline: %w", ErrModelLoad, err)
	}

	ortSingleton.session = session
	ortSingleton.pipeline = pipeline
	ortSingleton.ready = true
	return nil
}

// resolveModelPath returns the path to a usable model directory.
// It first checks for model files already on disk in modelDir, then
// falls back to extracting the statically embedded model (if compiled in).
func (h *HugotEmbedder) resolveModelPath() (string, error) {
	if diskPath, err := h.diskModelPath(); err == nil {
		return diskPath, nil
	}

	if !hasEmbeddedModel {
		return "", fmt.Errorf("no model found in %s and no embedded model compiled in (build with -tags embed_model)", h.modelDir)
	}

	if err := os.MkdirAll(h.modelDir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory: %w", err)
	}

	return extractEmbeddedModel(embeddedModelFS, h.modelDir)
}

// diskModelPath looks for a model subdirectory containing tokenizer.json
// inside modelDir. Returns the path if found, or an error if no valid
// model directory exists on disk.
func (h *HugotEmbedder) diskModelPath() (string, error) {
	entries, err := os.ReadDir(h.modelDir)
	if err != nil {
		return "", fmt.Errorf("read model directory %s: %w", h.modelDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(h.modelDir, entry.Name())
		if _, statErr := os.Stat(filepath.Join(candidate, "tokenizer.json")); statErr == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no model subdirectory with tokenizer.json found in %s", h.modelDir)
}

// extractEmbeddedModel writes the statically embedded model files to targetDir
// and returns the path to the model subdirectory.
func extractEmbeddedModel(embedded fs.FS, targetDir string) (string, error) {
	modelsFS, err := fs.Sub(embedded, "models")
	if err != nil {
		return "", fmt.Errorf("access embedded models: %w", err)
	}

	entries, err := fs.ReadDir(modelsFS, ".")
	if err != nil {
		return "", fmt.Errorf("read embedded models: %w", err)
	}

	var modelSubdir string
	for _, entry := range entries {
		if entry.IsDir() {
			modelSubdir = entry.Name()
			break
		}
	}
	if modelSubdir == "" {
		return "", fmt.Errorf("no model directory found in embedded models")
	}

	modelPath := filepath.Join(targetDir, modelSubdir)

	// Skip extraction if already present
	if _, statErr := os.Stat(filepath.Join(modelPath, "tokenizer.json")); statErr == nil {
		return modelPath, nil
	}

	modelFS, err := fs.Sub(modelsFS, modelSubdir)
	if err != nil {
		return "", fmt.Errorf("access model subdirectory: %w", err)
	}

	err = fs.WalkDir(modelFS, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		target := filepath.Join(modelPath, path)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, readErr := fs.ReadFile(modelFS, path)
		if readErr != nil {
			return fmt.Errorf("read embedded file %s: %w", path, readErr)
		}
		if mkdirErr := os.MkdirAll(filepath.Dir(target), 0o755); mkdirErr != nil {
			return fmt.Errorf("create directory for %s: %w", path, mkdirErr)
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		return "", fmt.Errorf("extract embedded model: %w", err)
	}

	return modelPath, nil
}

// Close is a no-op. The ONNX Runtime session is process-global and shared
// across all HugotEmbedder instances; it is cleaned up when the process exits.
func (h *HugotEmbedder) Close() error {
	return nil
}

var _ search.Embedder = (*HugotEmbedder)(nil)
