// Package embedder produces dump embeddings through an OpenAI-compatible
// embeddings endpoint (OpenAI, TEI, Ollama).
package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/heartmarshall/mindump-backend/internal/config"
)

var (
	// ErrEmptyInput is returned for blank text.
	ErrEmptyInput = errors.New("empty input text")
	// ErrEmptyVector is returned when the provider answers without a vector.
	ErrEmptyVector = errors.New("empty embedding vector")
)

// Embedder turns text into a fixed-size vector.
type Embedder struct {
	embedder embeddings.Embedder
	dims     int
	limiter  *rate.Limiter
	log      *slog.Logger
}

// New builds an Embedder from config.
func New(cfg config.EmbeddingConfig, logger *slog.Logger) (*Embedder, error) {
	token := cfg.APIKey
	if token == "" {
		// langchaingo refuses an empty token even for servers that ignore it.
		token = "placeholder"
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(token),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return newEmbedder(emb, cfg.Dimensions, cfg.RatePerSecond, logger), nil
}

func newEmbedder(emb embeddings.Embedder, dims int, perSecond float64, logger *slog.Logger) *Embedder {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Embedder{
		embedder: emb,
		dims:     dims,
		limiter:  rate.NewLimiter(limit, 1),
		log:      logger.With("adapter", "embedder"),
	}
}

// Embed returns the embedding of text. With dimensions configured, a vector
// of any other size is rejected so stored embeddings stay comparable.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ErrEmptyVector
	}

	vec := vectors[0]
	if e.dims > 0 && len(vec) != e.dims {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(vec), e.dims)
	}

	e.log.DebugContext(ctx, "text embedded", slog.Int("dims", len(vec)))
	return vec, nil
}
