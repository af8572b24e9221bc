package sessions

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/speechcoach/backend/internal/middleware"
	"github.com/speechcoach/backend/internal/models"
	"github.com/speechcoach/backend/internal/pipeline"
	"github.com/speechcoach/backend/internal/transcribe"
	"github.com/speechcoach/backend/pkg/response"
	"github.com/speechcoach/backend/pkg/storage"
)

// AnalyzeResponse is the body of a successful POST /analyze-speech.
type AnalyzeResponse struct {
	SessionID       uuid.UUID            `json:"session_id"`
	AudioURL        string               `json:"audio_url"`
	Transcription   string               `json:"transcription"`
	WordCount       int                  `json:"word_count"`
	SpeakingRateWPM float64              `json:"speaking_rate_wpm"`
	AudioFeatures   models.AudioFeatures `json:"audio_features"`
	AIFeedback      string               `json:"ai_feedback"`
	FeedbackSource  string               `json:"feedback_source"`
	Score           float64              `json:"score"`
	CreatedAt       time.Time            `json:"created_at"`
}

// Handler handles session HTTP endpoints.
type Handler struct {
	svc            *Service
	uploadDir      string
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler creates a sessions handler. Uploads are spooled to uploadDir (os.TempDir() when empty).
func NewHandler(svc *Service, uploadDir string, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, uploadDir: uploadDir, maxUploadBytes: maxUploadBytes, logger: logger}
}

// Analyze handles POST /analyze-speech (multipart field "audio").
func (h *Handler) Analyze(c *gin.Context) {
	userID := middleware.UserID(c)
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(c, "audio file too large")
			return
		}
		response.BadRequest(c, "audio file is required")
		return
	}
	if !storage.ValidateAudioFile(fh.Filename) {
		response.BadRequest(c, "unsupported audio format")
		return
	}
	if fh.Size == 0 {
		response.BadRequest(c, "audio file is empty")
		return
	}

	path, err := h.spool(fh)
	if err != nil {
		h.logger.Error("save upload failed", zap.Error(err))
		response.Internal(c, "failed to save upload")
		return
	}
	defer os.Remove(path)

	rec, err := h.svc.Record(c.Request.Context(), userID, Upload{Path: path, Filename: fh.Filename, Size: fh.Size})
	if err != nil {
		h.writeError(c, userID, err)
		return
	}
	s := rec.Session
	response.Created(c, AnalyzeResponse{
		SessionID:       s.ID,
		AudioURL:        s.AudioURL,
		Transcription:   s.Transcription,
		WordCount:       s.AnalysisData.WordCount,
		SpeakingRateWPM: s.AnalysisData.SpeakingRateWPM,
		AudioFeatures:   s.AnalysisData.AudioFeatures,
		AIFeedback:      s.AIFeedback,
		FeedbackSource:  string(rec.FeedbackSource),
		Score:           s.Score,
		CreatedAt:       s.CreatedAt,
	})
}

func (h *Handler) spool(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.uploadDir, "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), nil
}

func (h *Handler) writeError(c *gin.Context, userID uuid.UUID, err error) {
	log := h.logger.With(zap.String("user_id", userID.String()), zap.Error(err))
	switch {
	case errors.Is(err, pipeline.ErrInput):
		log.Info("rejected audio input")
		response.BadRequest(c, "invalid or unreadable audio file")
	case errors.Is(err, transcribe.ErrTranscription):
		log.Warn("transcription failed")
		response.UnprocessableEntity(c, "could not transcribe audio")
	case errors.Is(err, ErrStore):
		log.Error("session store failed")
		response.Internal(c, "session was not saved")
	default:
		log.Error("analyze speech failed")
		response.Internal(c, "failed to analyze speech")
	}
}

// List handles GET /sessions?limit=.
func (h *Handler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	userID := middleware.UserID(c)
	list, err := h.svc.ListSessions(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("list sessions failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to fetch sessions")
		return
	}
	response.OK(c, gin.H{"sessions": list, "count": len(list)})
}

// Stats handles GET /stats.
func (h *Handler) Stats(c *gin.Context) {
	userID := middleware.UserID(c)
	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to fetch stats")
		return
	}
	response.OK(c, stats)
}

// Suggestions handles GET /suggestions.
func (h *Handler) Suggestions(c *gin.Context) {
	userID := middleware.UserID(c)
	fb, err := h.svc.Suggestions(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("suggestions failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to fetch suggestions")
		return
	}
	response.OK(c, gin.H{"suggestions": fb.Text, "source": fb.Source})
}

// RegisterRoutes mounts the authenticated session routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/analyze-speech", h.Analyze)
	r.GET("/sessions", h.List)
	r.GET("/stats", h.Stats)
	r.GET("/suggestions", h.Suggestions)
}
