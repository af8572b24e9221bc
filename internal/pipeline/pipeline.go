// Package pipeline runs one recording through transcription, feature extraction, scoring and feedback.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/speechcoach/backend/internal/feedback"
	"github.com/speechcoach/backend/internal/models"
	"github.com/speechcoach/backend/internal/scoring"
	"github.com/speechcoach/backend/internal/transcribe"
)

// ErrInput marks unreadable, corrupt or empty audio.
var ErrInput = errors.New("invalid audio input")

// FeatureAnalyzer decodes a recording and measures it.
type FeatureAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (models.AudioFeatures, error)
}

// FeedbackComposer writes coaching text; it never fails.
type FeedbackComposer interface {
	Compose(ctx context.Context, transcription string, m models.SessionMetrics, f models.AudioFeatures) feedback.Feedback
}

// Result is the analysis of one recording, ready to be persisted.
type Result struct {
	Transcription string
	Metrics       models.SessionMetrics
	Features      models.AudioFeatures
	Score         float64
	Feedback      feedback.Feedback
}

// AnalysisData returns the persisted form of the metrics and features.
func (r Result) AnalysisData() models.AnalysisData {
	return models.AnalysisData{SessionMetrics: r.Metrics, AudioFeatures: r.Features}
}

// Pipeline holds the collaborators. It keeps no per-session state and is safe for concurrent use
// when its collaborators are.
type Pipeline struct {
	transcriber transcribe.Transcriber
	analyzer    FeatureAnalyzer
	composer    FeedbackComposer
	language    string
	logger      *zap.Logger
}

// New creates a Pipeline.
func New(t transcribe.Transcriber, a FeatureAnalyzer, c FeedbackComposer, language string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if language == "" {
		language = transcribe.DefaultLanguage
	}
	return &Pipeline{transcriber: t, analyzer: a, composer: c, language: language, logger: logger}
}

// Analyze runs the stages in order. Transcription and feature failures abort with no result;
// feedback failures degrade to fallback text inside the composer.
func (p *Pipeline) Analyze(ctx context.Context, audioPath string) (Result, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInput, err)
	}
	if info.Size() == 0 {
		return Result{}, fmt.Errorf("%w: empty file", ErrInput)
	}

	tr, err := p.transcriber.Transcribe(ctx, audioPath, p.language)
	if err != nil {
		if errors.Is(err, transcribe.ErrTranscription) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", transcribe.ErrTranscription, err)
	}

	features, err := p.analyzer.AnalyzeFile(ctx, audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInput, err)
	}
	if features.DurationSeconds <= 0 {
		return Result{}, fmt.Errorf("%w: no audio samples", ErrInput)
	}

	metrics := ComputeMetrics(tr.Text, features.DurationSeconds)
	score := scoring.Score(metrics.SpeakingRateWPM, features)
	fb := p.composer.Compose(ctx, tr.Text, metrics, features)

	p.logger.Info("session analysed",
		zap.Float64("duration_seconds", features.DurationSeconds),
		zap.Int("word_count", metrics.WordCount),
		zap.Float64("speaking_rate_wpm", metrics.SpeakingRateWPM),
		zap.Float64("score", score),
		zap.String("feedback_source", string(fb.Source)),
	)

	return Result{
		Transcription: tr.Text,
		Metrics:       metrics,
		Features:      features,
		Score:         score,
		Feedback:      fb,
	}, nil
}

// ComputeMetrics derives word count and words per minute; a zero duration yields 0 wpm.
func ComputeMetrics(transcript string, durationSeconds float64) models.SessionMetrics {
	words := transcribe.Result{Text: transcript}.WordCount()
	var wpm float64
	if durationSeconds > 0 {
		wpm = float64(words) / durationSeconds * 60
	}
	return models.SessionMetrics{WordCount: words, SpeakingRateWPM: wpm}
}
