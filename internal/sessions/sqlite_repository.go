package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/speechcoach/backend/internal/models"
)

// SQLiteRepository stores sessions in a local SQLite database. Timestamps are unix microseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed session repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateSession inserts a practice session, filling ID and CreatedAt.
func (r *SQLiteRepository) CreateSession(ctx context.Context, s *models.PracticeSession) error {
	analysis, err := json.Marshal(s.AnalysisData)
	if err != nil {
		return fmt.Errorf("marshal analysis data: %w", err)
	}
	prepareSession(s)
	const query = `INSERT INTO practice_sessions (id, user_id, audio_url, audio_hash, transcription, analysis_data, llm_feedback, score, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID.String(), s.UserID.String(), s.AudioURL, s.AudioHash, s.Transcription,
		string(analysis), s.AIFeedback, s.Score, s.CreatedAt.UnixMicro(),
	)
	return err
}

// CreateProgress inserts a progress entry; replaying an already stored session is a no-op.
func (r *SQLiteRepository) CreateProgress(ctx context.Context, p *models.ProgressEntry) error {
	metrics, err := json.Marshal(p.Metrics)
	if err != nil {
		return fmt.Errorf("marshal progress metrics: %w", err)
	}
	prepareProgress(p)
	const query = `INSERT INTO user_progress (id, user_id, session_id, metrics, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO NOTHING`
	_, err = r.db.ExecContext(ctx, query, p.ID.String(), p.UserID.String(), p.SessionID.String(), string(metrics), p.CreatedAt.UnixMicro())
	return err
}

// ListByUser returns the user's most recent sessions, newest first.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.PracticeSession, error) {
	const query = `SELECT id, user_id, audio_url, COALESCE(audio_hash, ''), transcription, analysis_data, llm_feedback, score, created_at
		FROM practice_sessions WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.PracticeSession
	for rows.Next() {
		var (
			s               models.PracticeSession
			id, user, data  string
			createdAtMicros int64
		)
		if err := rows.Scan(&id, &user, &s.AudioURL, &s.AudioHash, &s.Transcription, &data, &s.AIFeedback, &s.Score, &createdAtMicros); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse session id: %w", err)
		}
		if s.UserID, err = uuid.Parse(user); err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &s.AnalysisData); err != nil {
			return nil, fmt.Errorf("decode analysis data for %s: %w", id, err)
		}
		s.CreatedAt = time.UnixMicro(createdAtMicros).UTC()
		list = append(list, s)
	}
	return list, rows.Err()
}
