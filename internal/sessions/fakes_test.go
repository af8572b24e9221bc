package sessions_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/speechcoach/backend/internal/feedback"
	"github.com/speechcoach/backend/internal/models"
	"github.com/speechcoach/backend/internal/pipeline"
)

type memRepo struct {
	mu           sync.Mutex
	sessions     []models.PracticeSession
	progress     []models.ProgressEntry
	failSession  bool
	failProgress bool
	failList     bool
	listCalls    int
}

func (r *memRepo) CreateSession(_ context.Context, s *models.PracticeSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSession {
		return errors.New("connection refused")
	}
	s.ID = uuid.New()
	r.sessions = append(r.sessions, *s)
	return nil
}

func (r *memRepo) CreateProgress(_ context.Context, p *models.ProgressEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failProgress {
		return errors.New("progress table missing")
	}
	r.progress = append(r.progress, *p)
	return nil
}

func (r *memRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.PracticeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.failList {
		return nil, errors.New("timeout")
	}
	var out []models.PracticeSession
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAnalyzer struct {
	result pipeline.Result
	err    error
}

func (f *fakeAnalyzer) Analyze(context.Context, string) (pipeline.Result, error) {
	return f.result, f.err
}

type fakeBlobs struct {
	uploaded []string
	deleted  []string
	body     []byte
	fail     bool
}

func (b *fakeBlobs) UploadAudio(_ context.Context, userID, filename string, body io.Reader, _ int64) (string, string, error) {
	if b.fail {
		return "", "", errors.New("access denied")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", "", err
	}
	b.body = data
	key := "audio/" + userID + "/1_" + filename
	b.uploaded = append(b.uploaded, key)
	return "https://cdn.test/" + key, key, nil
}

func (b *fakeBlobs) DeleteAudio(_ context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return nil
}

type fakeQueue struct {
	entries []models.ProgressEntry
}

func (q *fakeQueue) EnqueueProgress(_ context.Context, e models.ProgressEntry) error {
	q.entries = append(q.entries, e)
	return nil
}

type memCache struct {
	data        map[uuid.UUID]models.UserStats
	invalidated []uuid.UUID
}

func newMemCache() *memCache { return &memCache{data: map[uuid.UUID]models.UserStats{}} }

func (c *memCache) Get(_ context.Context, id uuid.UUID) (models.UserStats, bool, error) {
	s, ok := c.data[id]
	return s, ok, nil
}

func (c *memCache) Set(_ context.Context, id uuid.UUID, s models.UserStats) error {
	c.data[id] = s
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id uuid.UUID) error {
	delete(c.data, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type stubSuggester struct {
	history []models.PracticeSession
}

func (s *stubSuggester) Suggestions(_ context.Context, history []models.PracticeSession) feedback.Feedback {
	s.history = history
	if len(history) == 0 {
		return feedback.Feedback{Text: feedback.FirstSessionSuggestion, Source: feedback.SourceFallback}
	}
	return feedback.Feedback{Text: "Work on pauses.", Source: feedback.SourceGenerated}
}

func sampleResult() pipeline.Result {
	return pipeline.Result{
		Transcription: "hello world",
		Metrics:       models.SessionMetrics{WordCount: 2, SpeakingRateWPM: 120},
		Features: models.AudioFeatures{
			DurationSeconds: 1, AverageVolume: 0.05, VolumeVariation: 0.01, PitchVariation: 40, SampleRate: 16000,
		},
		Score:    100,
		Feedback: feedback.Feedback{Text: "Great pacing.", Source: feedback.SourceGenerated},
	}
}
