package sessions_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechcoach/backend/internal/models"
	"github.com/speechcoach/backend/internal/pipeline"
	"github.com/speechcoach/backend/internal/sessions"
	"github.com/speechcoach/backend/pkg/utils"
)

func writeUpload(t *testing.T) sessions.Upload {
	t.Helper()
	p := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(p, []byte("RIFF-audio-bytes"), 0o600))
	return sessions.Upload{Path: p, Filename: "clip.wav", Size: 16}
}

func TestRecordPersistsSession(t *testing.T) {
	repo := &memRepo{}
	blobs := &fakeBlobs{}
	cache := newMemCache()
	svc := sessions.NewService(repo, &fakeAnalyzer{result: sampleResult()}, &stubSuggester{}, nil,
		sessions.WithBlobStore(blobs), sessions.WithStatsCache(cache))
	user := uuid.New()

	rec, err := svc.Record(context.Background(), user, writeUpload(t))
	require.NoError(t, err)

	require.Len(t, repo.sessions, 1)
	s := repo.sessions[0]
	assert.Equal(t, rec.Session.ID, s.ID)
	assert.Equal(t, user, s.UserID)
	assert.Equal(t, "https://cdn.test/audio/"+user.String()+"/1_clip.wav", s.AudioURL)
	assert.Equal(t, "hello world", s.Transcription)
	assert.Equal(t, "Great pacing.", s.AIFeedback)
	assert.Equal(t, 100.0, s.Score)
	assert.Equal(t, 2, s.AnalysisData.WordCount)
	assert.Equal(t, "RIFF-audio-bytes", string(blobs.body))

	wantHash, err := utils.HashAudio(strings.NewReader("RIFF-audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, wantHash, s.AudioHash)

	require.Len(t, repo.progress, 1)
	assert.Equal(t, s.ID, repo.progress[0].SessionID)
	assert.Equal(t, models.ProgressMetrics{Score: 100, Volume: 0.05, PitchVariation: 40}, repo.progress[0].Metrics)
	assert.Equal(t, []uuid.UUID{user}, cache.invalidated)
}

func TestRecordAnalysisFailureWritesNothing(t *testing.T) {
	repo := &memRepo{}
	blobs := &fakeBlobs{}
	svc := sessions.NewService(repo, &fakeAnalyzer{err: pipeline.ErrInput}, &stubSuggester{}, nil, sessions.WithBlobStore(blobs))

	_, err := svc.Record(context.Background(), uuid.New(), writeUpload(t))
	require.ErrorIs(t, err, pipeline.ErrInput)
	assert.Empty(t, repo.sessions)
	assert.Empty(t, blobs.uploaded)
}

func TestRecordStoreFailureSurfacesAndCleansUp(t *testing.T) {
	repo := &memRepo{failSession: true}
	blobs := &fakeBlobs{}
	svc := sessions.NewService(repo, &fakeAnalyzer{result: sampleResult()}, &stubSuggester{}, nil, sessions.WithBlobStore(blobs))

	_, err := svc.Record(context.Background(), uuid.New(), writeUpload(t))
	require.ErrorIs(t, err, sessions.ErrStore)
	assert.Equal(t, blobs.uploaded, blobs.deleted)
	assert.Empty(t, repo.progress)
}

func TestRecordBlobFailureIsStoreError(t *testing.T) {
	repo := &memRepo{}
	svc := sessions.NewService(repo, &fakeAnalyzer{result: sampleResult()}, &stubSuggester{}, nil,
		sessions.WithBlobStore(&fakeBlobs{fail: true}))

	_, err := svc.Record(context.Background(), uuid.New(), writeUpload(t))
	require.ErrorIs(t, err, sessions.ErrStore)
	assert.Empty(t, repo.sessions)
}

func TestRecordProgressFailureIsSwallowed(t *testing.T) {
	repo := &memRepo{failProgress: true}
	q := &fakeQueue{}
	svc := sessions.NewService(repo, &fakeAnalyzer{result: sampleResult()}, &stubSuggester{}, nil, sessions.WithProgressQueue(q))

	rec, err := svc.Record(context.Background(), uuid.New(), writeUpload(t))
	require.NoError(t, err)
	assert.Empty(t, rec.Session.AudioURL)
	require.Len(t, q.entries, 1)
	assert.Equal(t, rec.Session.ID, q.entries[0].SessionID)
}

func TestListSessionsLimits(t *testing.T) {
	repo := &memRepo{}
	user := uuid.New()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		repo.sessions = append(repo.sessions, models.PracticeSession{ID: uuid.New(), UserID: user, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	svc := sessions.NewService(repo, nil, &stubSuggester{}, nil)
	ctx := context.Background()

	list, err := svc.ListSessions(ctx, user, 0)
	require.NoError(t, err)
	assert.Len(t, list, sessions.DefaultListLimit)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	list, err = svc.ListSessions(ctx, user, 500)
	require.NoError(t, err)
	assert.Len(t, list, sessions.MaxListLimit)

	list, err = svc.ListSessions(ctx, uuid.New(), 5)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	repo.failList = true
	_, err = svc.ListSessions(ctx, user, 5)
	require.ErrorIs(t, err, sessions.ErrStore)
}

func TestStatsCached(t *testing.T) {
	repo := &memRepo{}
	user := uuid.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.sessions = []models.PracticeSession{
		{UserID: user, Score: 80, CreatedAt: at, AnalysisData: models.AnalysisData{SessionMetrics: models.SessionMetrics{WordCount: 100, SpeakingRateWPM: 110}}},
		{UserID: user, Score: 91, CreatedAt: at.Add(time.Hour), AnalysisData: models.AnalysisData{SessionMetrics: models.SessionMetrics{WordCount: 50, SpeakingRateWPM: 131}}},
	}
	cache := newMemCache()
	svc := sessions.NewService(repo, nil, &stubSuggester{}, nil, sessions.WithStatsCache(cache))
	ctx := context.Background()

	stats, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 85.5, stats.AverageScore)
	assert.Equal(t, 150, stats.TotalWords)
	assert.Equal(t, 120.5, stats.AverageWPM)
	require.NotNil(t, stats.LatestSession)
	assert.Equal(t, at.Add(time.Hour), *stats.LatestSession)

	again, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, stats, again)
	assert.Equal(t, 1, repo.listCalls)
}

func TestSuggestionsUsesHistory(t *testing.T) {
	repo := &memRepo{}
	user := uuid.New()
	sugg := &stubSuggester{}
	svc := sessions.NewService(repo, nil, sugg, nil)

	fb, err := svc.Suggestions(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "Complete your first session to get personalized suggestions!", fb.Text)

	repo.sessions = append(repo.sessions, models.PracticeSession{UserID: user})
	fb, err = svc.Suggestions(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "Work on pauses.", fb.Text)
	assert.Len(t, sugg.history, 1)

	repo.failList = true
	_, err = svc.Suggestions(context.Background(), user)
	assert.True(t, errors.Is(err, sessions.ErrStore))
}
