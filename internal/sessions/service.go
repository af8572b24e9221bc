package sessions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/speechcoach/backend/internal/feedback"
	"github.com/speechcoach/backend/internal/models"
	"github.com/speechcoach/backend/internal/pipeline"
	"github.com/speechcoach/backend/pkg/utils"
)

// ErrStore marks a failed primary session write or read.
var ErrStore = errors.New("session store failed")

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
	statsWindow      = 100
)

// Analyzer runs the analysis pipeline on a recording.
type Analyzer interface {
	Analyze(ctx context.Context, audioPath string) (pipeline.Result, error)
}

// BlobStore keeps the original recordings.
type BlobStore interface {
	UploadAudio(ctx context.Context, userID, filename string, body io.Reader, size int64) (url, key string, err error)
	DeleteAudio(ctx context.Context, key string) error
}

// ProgressQueue accepts progress entries whose write failed, for a later replay.
type ProgressQueue interface {
	EnqueueProgress(ctx context.Context, entry models.ProgressEntry) error
}

// Suggester turns session history into practice suggestions.
type Suggester interface {
	Suggestions(ctx context.Context, history []models.PracticeSession) feedback.Feedback
}

// Upload is a recording saved to local disk by the HTTP layer.
type Upload struct {
	Path     string
	Filename string
	Size     int64
}

// Recorded is the outcome of a successful Record call.
type Recorded struct {
	Session        models.PracticeSession
	FeedbackSource feedback.Source
}

// Service ties the pipeline to storage. Blobs, queue and cache are optional.
type Service struct {
	repo      Repository
	analyzer  Analyzer
	suggester Suggester
	blobs     BlobStore
	queue     ProgressQueue
	cache     StatsCache
	logger    *zap.Logger
}

// ServiceOption sets an optional collaborator.
type ServiceOption func(*Service)

// WithBlobStore uploads recordings to b.
func WithBlobStore(b BlobStore) ServiceOption { return func(s *Service) { s.blobs = b } }

// WithProgressQueue replays failed progress writes through q.
func WithProgressQueue(q ProgressQueue) ServiceOption { return func(s *Service) { s.queue = q } }

// WithStatsCache caches Stats results in c.
func WithStatsCache(c StatsCache) ServiceOption { return func(s *Service) { s.cache = c } }

// NewService creates a session service.
func NewService(repo Repository, analyzer Analyzer, suggester Suggester, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{repo: repo, analyzer: analyzer, suggester: suggester, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Record analyses an upload, stores the recording and persists the session.
// Nothing is written when analysis fails. A failed session insert removes the uploaded blob.
func (s *Service) Record(ctx context.Context, userID uuid.UUID, up Upload) (*Recorded, error) {
	log := s.logger.With(zap.String("user_id", userID.String()))

	result, err := s.analyzer.Analyze(ctx, up.Path)
	if err != nil {
		return nil, err
	}

	hash, url, key, err := s.storeAudio(ctx, userID, up)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	session := models.PracticeSession{
		UserID:        userID,
		AudioURL:      url,
		AudioHash:     hash,
		Transcription: result.Transcription,
		AnalysisData:  result.AnalysisData(),
		AIFeedback:    result.Feedback.Text,
		Score:         result.Score,
	}
	if err := s.repo.CreateSession(ctx, &session); err != nil {
		if key != "" {
			if derr := s.blobs.DeleteAudio(ctx, key); derr != nil {
				log.Warn("orphaned audio blob", zap.String("key", key), zap.Error(derr))
			}
		}
		return nil, fmt.Errorf("%w: insert session: %v", ErrStore, err)
	}
	log.Info("session saved", zap.String("session_id", session.ID.String()), zap.Float64("score", session.Score))

	s.recordProgress(ctx, log, session)
	s.invalidateStats(ctx, log, userID)

	return &Recorded{Session: session, FeedbackSource: result.Feedback.Source}, nil
}

func (s *Service) storeAudio(ctx context.Context, userID uuid.UUID, up Upload) (hash, url, key string, err error) {
	f, err := os.Open(up.Path)
	if err != nil {
		return "", "", "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	hash, err = utils.HashAudio(f)
	if err != nil {
		return "", "", "", err
	}
	if s.blobs == nil {
		return hash, "", "", nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", "", "", fmt.Errorf("rewind upload: %w", err)
	}
	url, key, err = s.blobs.UploadAudio(ctx, userID.String(), up.Filename, f, up.Size)
	if err != nil {
		return "", "", "", err
	}
	return hash, url, key, nil
}

// recordProgress writes the secondary progress row. Failures never fail the request.
func (s *Service) recordProgress(ctx context.Context, log *zap.Logger, session models.PracticeSession) {
	entry := models.ProgressEntry{
		UserID:    session.UserID,
		SessionID: session.ID,
		Metrics: models.ProgressMetrics{
			Score:          session.Score,
			Volume:         session.AnalysisData.AudioFeatures.AverageVolume,
			PitchVariation: session.AnalysisData.AudioFeatures.PitchVariation,
		},
		CreatedAt: session.CreatedAt,
	}
	err := s.repo.CreateProgress(ctx, &entry)
	if err == nil {
		return
	}
	log.Warn("could not update user progress", zap.String("session_id", session.ID.String()), zap.Error(err))
	if s.queue == nil {
		return
	}
	if qerr := s.queue.EnqueueProgress(ctx, entry); qerr != nil {
		log.Warn("progress replay enqueue failed", zap.Error(qerr))
	}
}

func (s *Service) invalidateStats(ctx context.Context, log *zap.Logger, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Warn("stats cache invalidate failed", zap.Error(err))
	}
}

// ListSessions returns up to limit recent sessions, newest first. limit <= 0 means the default, larger values are capped.
func (s *Service) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.PracticeSession, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", ErrStore, err)
	}
	if list == nil {
		list = []models.PracticeSession{}
	}
	return list, nil
}

// Stats aggregates the user's recent sessions, served from cache when possible.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	if s.cache != nil {
		stats, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		} else if ok {
			return stats, nil
		}
	}
	list, err := s.repo.ListByUser(ctx, userID, statsWindow)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("%w: stats: %v", ErrStore, err)
	}
	stats := ComputeStats(list)
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, stats); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Suggestions asks for practice focus areas based on the user's recent sessions.
func (s *Service) Suggestions(ctx context.Context, userID uuid.UUID) (feedback.Feedback, error) {
	history, err := s.repo.ListByUser(ctx, userID, DefaultListLimit)
	if err != nil {
		return feedback.Feedback{}, fmt.Errorf("%w: suggestions: %v", ErrStore, err)
	}
	return s.suggester.Suggestions(ctx, history), nil
}
