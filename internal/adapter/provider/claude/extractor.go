// Package claude implements structured extraction of dump content on top
// of the Anthropic Messages API.
package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/heartmarshall/mindump-backend/internal/config"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

type mediaResolver interface {
	Resolve(ctx context.Context, ref string) (*domain.Media, error)
}

// Extractor calls the model with a fixed schema and returns a Proposal.
type Extractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	media     mediaResolver
	loc       *time.Location
	log       *slog.Logger
}

// NewExtractor creates an Extractor. media may be nil, in which case media
// references are ignored. extra options are appended to the client options.
func NewExtractor(cfg config.AIConfig, tz string, media mediaResolver, logger *slog.Logger, extra ...option.RequestOption) (*Extractor, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tz, err)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(1),
	}
	opts = append(opts, extra...)

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Extractor{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		limiter:   rate.NewLimiter(limit, burst),
		media:     media,
		loc:       loc,
		log:       logger.With("adapter", "claude_extractor"),
	}, nil
}

// Extract sends the request to the model and parses its reply.
// It returns domain.ErrNoContent when neither text nor usable media exist.
func (e *Extractor) Extract(ctx context.Context, req domain.ExtractRequest) (*domain.Proposal, error) {
	hasText := req.Text != nil && strings.TrimSpace(*req.Text) != ""

	var blocks []anthropic.ContentBlockParamUnion
	if req.MediaRef != nil && *req.MediaRef != "" {
		block, err := e.mediaBlock(ctx, *req.MediaRef)
		if err != nil {
			e.log.WarnContext(ctx, "media unavailable, continuing without it",
				slog.String("user_id", req.UserID.String()),
				slog.String("error", err.Error()),
			)
		} else if block != nil {
			blocks = append(blocks, *block)
		}
	}
	if !hasText && len(blocks) == 0 {
		return nil, domain.ErrNoContent
	}

	prompt, err := buildUserPrompt(req, e.loc)
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: e.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm api call: %w", err)
	}

	var reply strings.Builder
	for _, c := range msg.Content {
		if c.Type == "text" {
			reply.WriteString(c.Text)
		}
	}
	if reply.Len() == 0 {
		return nil, fmt.Errorf("empty model response")
	}

	p, err := decodeProposal(reply.String(), req.People, e.loc)
	if err != nil {
		e.log.WarnContext(ctx, "unusable model reply",
			slog.String("user_id", req.UserID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	e.log.DebugContext(ctx, "extraction done",
		slog.String("user_id", req.UserID.String()),
		slog.Float64("confidence", p.Confidence),
		slog.Duration("took", time.Since(start)),
	)
	return p, nil
}

func (e *Extractor) mediaBlock(ctx context.Context, ref string) (*anthropic.ContentBlockParamUnion, error) {
	if e.media == nil {
		return nil, nil
	}
	m, err := e.media.Resolve(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolve media: %w", err)
	}
	if !m.IsImage() {
		return nil, fmt.Errorf("media type %s: %w", m.MIMEType, errUnsupportedMedia)
	}
	block := anthropic.NewImageBlockBase64(m.MIMEType, base64.StdEncoding.EncodeToString(m.Data))
	return &block, nil
}
