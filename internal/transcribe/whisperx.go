package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type whisperxOutput struct {
	Language string `json:"language"`
	Segments []struct {
		Text  string          `json:"text"`
		Start decimal.Decimal `json:"start"`
		End   decimal.Decimal `json:"end"`
	} `json:"segments"`
}

// WhisperX runs the whisperx CLI locally and reads the JSON it writes next to the output dir.
type WhisperX struct {
	bin    string
	model  string
	logger *zap.Logger
}

// NewWhisperX creates a CLI-backed transcriber.
func NewWhisperX(bin, model string, logger *zap.Logger) *WhisperX {
	if bin == "" {
		bin = "whisperx"
	}
	if model == "" || model == "whisper-1" {
		model = "base"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhisperX{bin: bin, model: model, logger: logger}
}

// Transcribe implements Transcriber.
func (w *WhisperX) Transcribe(ctx context.Context, audioPath, language string) (Result, error) {
	if language == "" {
		language = DefaultLanguage
	}
	outDir, err := os.MkdirTemp("", "whisperx-*")
	if err != nil {
		return Result{}, fmt.Errorf("%w: temp dir: %v", ErrTranscription, err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, w.bin, audioPath,
		"--model", w.model,
		"--language", language,
		"--output_format", "json",
		"--output_dir", outDir,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("%w: whisperx: %v: %s", ErrTranscription, err, lastLine(stderr.String()))
	}

	base := filepath.Base(audioPath)
	resultPath := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".json")
	raw, err := os.ReadFile(resultPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: open whisperx result: %v", ErrTranscription, err)
	}
	res, err := parseWhisperX(raw, language)
	if err != nil {
		return Result{}, err
	}
	w.logger.Info("transcription complete", zap.Int("words", res.WordCount()), zap.String("language", res.Language))
	return res, nil
}

// parseWhisperX builds a Result from whisperx JSON output; the transcript is the joined segment text.
func parseWhisperX(raw []byte, language string) (Result, error) {
	var out whisperxOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("%w: decode whisperx json: %v", ErrTranscription, err)
	}
	res := Result{Language: out.Language, Segments: make([]Segment, 0, len(out.Segments))}
	if res.Language == "" {
		res.Language = language
	}
	texts := make([]string, 0, len(out.Segments))
	for _, s := range out.Segments {
		text := strings.TrimSpace(s.Text)
		res.Segments = append(res.Segments, Segment{
			StartMs: secondsToMs(s.Start),
			EndMs:   secondsToMs(s.End),
			Text:    text,
		})
		if text != "" {
			texts = append(texts, text)
		}
	}
	res.Text = strings.Join(texts, " ")
	return res, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
