// Package sessions persists analysed practice sessions and serves history, stats and suggestions.
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/speechcoach/backend/internal/models"
)

// Repository is the session store contract shared by the Postgres and SQLite backends.
type Repository interface {
	CreateSession(ctx context.Context, s *models.PracticeSession) error
	CreateProgress(ctx context.Context, p *models.ProgressEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.PracticeSession, error)
}

// PostgresRepository stores sessions in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed session repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CreateSession inserts a practice session, filling ID and CreatedAt.
func (r *PostgresRepository) CreateSession(ctx context.Context, s *models.PracticeSession) error {
	analysis, err := json.Marshal(s.AnalysisData)
	if err != nil {
		return fmt.Errorf("marshal analysis data: %w", err)
	}
	const query = `INSERT INTO practice_sessions (id, user_id, audio_url, audio_hash, transcription, analysis_data, llm_feedback, score, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)`
	prepareSession(s)
	_, err = r.pool.Exec(ctx, query, s.ID, s.UserID, s.AudioURL, s.AudioHash, s.Transcription, analysis, s.AIFeedback, s.Score, s.CreatedAt)
	return err
}

// CreateProgress inserts a progress entry, filling ID and CreatedAt when unset.
func (r *PostgresRepository) CreateProgress(ctx context.Context, p *models.ProgressEntry) error {
	metrics, err := json.Marshal(p.Metrics)
	if err != nil {
		return fmt.Errorf("marshal progress metrics: %w", err)
	}
	const query = `INSERT INTO user_progress (id, user_id, session_id, metrics, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO NOTHING`
	prepareProgress(p)
	_, err = r.pool.Exec(ctx, query, p.ID, p.UserID, p.SessionID, metrics, p.CreatedAt)
	return err
}

// ListByUser returns the user's most recent sessions, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.PracticeSession, error) {
	const query = `SELECT id, user_id, audio_url, COALESCE(audio_hash, ''), transcription, analysis_data, llm_feedback, score, created_at
		FROM practice_sessions WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.PracticeSession
	for rows.Next() {
		var s models.PracticeSession
		var analysis []byte
		if err := rows.Scan(&s.ID, &s.UserID, &s.AudioURL, &s.AudioHash, &s.Transcription, &analysis, &s.AIFeedback, &s.Score, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(analysis, &s.AnalysisData); err != nil {
			return nil, fmt.Errorf("decode analysis data for %s: %w", s.ID, err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		list = append(list, s)
	}
	return list, rows.Err()
}

// prepareSession assigns identity and a microsecond-precision timestamp, matching what both stores keep.
func prepareSession(s *models.PracticeSession) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.CreatedAt = s.CreatedAt.UTC().Truncate(time.Microsecond)
}

func prepareProgress(p *models.ProgressEntry) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.CreatedAt = p.CreatedAt.UTC().Truncate(time.Microsecond)
}
