package feedback

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/speechcoach/backend/internal/models"
)

// Source tells whether feedback text came from the provider or the rule-based fallback.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

const recentWindow = 5

// Fixed texts for the suggestion path.
const (
	FirstSessionSuggestion    = "Complete your first session to get personalized suggestions!"
	FallbackSuggestion        = "Keep practicing daily for best results!"
	DefaultTemperature        = 0.7
	DefaultMaxTokens          = 500
	DefaultSuggestionMaxToken = 400
)

// Feedback is composed coaching text tagged with its origin.
type Feedback struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Options tune provider calls.
type Options struct {
	Temperature         float64
	MaxTokens           int
	SuggestionMaxTokens int
}

// Composer asks a Provider for coaching text and falls back to fixed templates on any failure.
type Composer struct {
	provider Provider
	opts     Options
	logger   *zap.Logger
}

// NewComposer creates a Composer. A nil provider always yields fallback text.
func NewComposer(provider Provider, opts Options, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.SuggestionMaxTokens <= 0 {
		opts.SuggestionMaxTokens = DefaultSuggestionMaxToken
	}
	return &Composer{provider: provider, opts: opts, logger: logger}
}

// Compose never fails: provider errors and empty replies produce Fallback text.
func (c *Composer) Compose(ctx context.Context, transcription string, m models.SessionMetrics, f models.AudioFeatures) Feedback {
	if c.provider == nil {
		return Feedback{Text: Fallback(m.SpeakingRateWPM, f), Source: SourceFallback}
	}
	text, err := c.provider.Complete(ctx, systemPrompt, sessionPrompt(transcription, m, f), c.opts.Temperature, c.opts.MaxTokens)
	if err == nil && strings.TrimSpace(text) != "" {
		return Feedback{Text: text, Source: SourceGenerated}
	}
	c.logFallback("feedback", err)
	return Feedback{Text: Fallback(m.SpeakingRateWPM, f), Source: SourceFallback}
}

// Suggestions recommends focus areas from session history (newest first).
func (c *Composer) Suggestions(ctx context.Context, history []models.PracticeSession) Feedback {
	if len(history) == 0 {
		return Feedback{Text: FirstSessionSuggestion, Source: SourceFallback}
	}
	if c.provider == nil {
		return Feedback{Text: FallbackSuggestion, Source: SourceFallback}
	}
	text, err := c.provider.Complete(ctx, systemPrompt, suggestionPrompt(history), c.opts.Temperature, c.opts.SuggestionMaxTokens)
	if err == nil && strings.TrimSpace(text) != "" {
		return Feedback{Text: text, Source: SourceGenerated}
	}
	c.logFallback("suggestions", err)
	return Feedback{Text: FallbackSuggestion, Source: SourceFallback}
}

// logFallback records why the fallback fired. Errors outside ErrProvider are
// not provider outages and are logged at error level.
func (c *Composer) logFallback(kind string, err error) {
	switch {
	case err == nil:
		c.logger.Warn("empty completion, using fallback", zap.String("kind", kind))
	case errors.Is(err, ErrProvider):
		c.logger.Warn("provider failed, using fallback", zap.String("kind", kind), zap.Error(err))
	default:
		c.logger.Error("unexpected completion error, using fallback", zap.String("kind", kind), zap.Error(err))
	}
}
