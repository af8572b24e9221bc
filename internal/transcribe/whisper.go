package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Form field names.
const (
	formFieldFile           = "file"
	formFieldModel          = "model"
	formFieldLanguage       = "language"
	formFieldResponseFormat = "response_format"
)

// Whisper calls an OpenAI-compatible /audio/transcriptions endpoint.
type Whisper struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	logger     *zap.Logger
}

// WhisperConfig configures the HTTP transcriber.
type WhisperConfig struct {
	APIKey  string
	BaseURL string // e.g. https://api.openai.com/v1
	Model   string
	Timeout time.Duration
}

type verboseResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start decimal.Decimal `json:"start"`
		End   decimal.Decimal `json:"end"`
		Text  string          `json:"text"`
	} `json:"segments"`
}

// NewWhisper creates a Whisper API client.
func NewWhisper(cfg WhisperConfig, logger *zap.Logger) *Whisper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &Whisper{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		logger:     logger,
	}
}

// Transcribe uploads the file and decodes the verbose_json response.
func (w *Whisper) Transcribe(ctx context.Context, audioPath, language string) (Result, error) {
	if language == "" {
		language = DefaultLanguage
	}
	body, contentType, err := w.buildForm(audioPath, language)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: create request: %v", ErrTranscription, err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: request: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("%w: status %d: %s", ErrTranscription, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var vr verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %v", ErrTranscription, err)
	}

	res := Result{
		Text:     strings.TrimSpace(vr.Text),
		Language: vr.Language,
		Segments: make([]Segment, 0, len(vr.Segments)),
	}
	if res.Language == "" {
		res.Language = language
	}
	for _, s := range vr.Segments {
		res.Segments = append(res.Segments, Segment{
			StartMs: secondsToMs(s.Start),
			EndMs:   secondsToMs(s.End),
			Text:    strings.TrimSpace(s.Text),
		})
	}
	w.logger.Info("transcription complete", zap.Int("words", res.WordCount()), zap.String("language", res.Language))
	return res, nil
}

func (w *Whisper) buildForm(audioPath, language string) (io.Reader, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(formFieldFile, filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy file data: %w", err)
	}
	fields := [][2]string{
		{formFieldModel, w.model},
		{formFieldLanguage, language},
		{formFieldResponseFormat, "verbose_json"},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", f[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
