package models

import (
	"time"

	"github.com/google/uuid"
)

// AudioFeatures are acoustic measurements derived from one decoded waveform.
type AudioFeatures struct {
	DurationSeconds float64 `json:"duration_seconds"`
	AverageVolume   float64 `json:"average_volume"`   // mean frame RMS energy
	VolumeVariation float64 `json:"volume_variation"` // population std of frame RMS energy
	AveragePitchHz  float64 `json:"average_pitch_hz"` // 0 when no voiced frame was detected
	PitchVariation  float64 `json:"pitch_variation"`  // Hz
	SpeechRate      float64 `json:"speech_rate"`      // mean zero-crossing rate, not a phonetic rate
	SilenceRatio    float64 `json:"silence_ratio"`    // [0,1]
	SampleRate      int     `json:"sample_rate"`
}

// SessionMetrics combine the transcript word count with the clip duration.
type SessionMetrics struct {
	WordCount       int     `json:"word_count"`
	SpeakingRateWPM float64 `json:"speaking_rate_wpm"`
}

// AnalysisData is the persisted analysis payload of a practice session.
type AnalysisData struct {
	SessionMetrics
	AudioFeatures AudioFeatures `json:"audio_features"`
}

// PracticeSession is one analysed upload, created once and never updated.
type PracticeSession struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	AudioURL      string       `json:"audio_url"`
	AudioHash     string       `json:"audio_hash,omitempty"`
	Transcription string       `json:"transcription"`
	AnalysisData  AnalysisData `json:"analysis_data"`
	AIFeedback    string       `json:"ai_feedback"`
	Score         float64      `json:"score"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ProgressEntry is the secondary per-session progress row.
type ProgressEntry struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	SessionID uuid.UUID       `json:"session_id"`
	Metrics   ProgressMetrics `json:"metrics"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProgressMetrics is the metrics snapshot stored with a progress entry.
type ProgressMetrics struct {
	Score          float64 `json:"score"`
	Volume         float64 `json:"volume"`
	PitchVariation float64 `json:"pitch_variation"`
}

// UserStats are computed on read from a user's recent sessions.
type UserStats struct {
	TotalSessions int        `json:"total_sessions"`
	AverageScore  float64    `json:"average_score"`
	TotalWords    int        `json:"total_words"`
	AverageWPM    float64    `json:"average_wpm"`
	LatestSession *time.Time `json:"latest_session,omitempty"`
}
