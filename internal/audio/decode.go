package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/speechcoach/backend/internal/models"
)

// ErrDecode marks recordings that could not be turned into a waveform.
var ErrDecode = errors.New("audio decode failed")

// Decoder converts any container ffmpeg understands into mono float PCM at a fixed rate.
type Decoder struct {
	FFmpegBin  string
	SampleRate int
}

// NewDecoder returns a decoder resampling to sampleRate.
func NewDecoder(ffmpegBin string, sampleRate int) *Decoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Decoder{FFmpegBin: ffmpegBin, SampleRate: sampleRate}
}

// DecodeFile returns the mono waveform of the file at path.
func (d *Decoder) DecodeFile(ctx context.Context, path string) ([]float64, error) {
	args := []string{
		"-hide_banner", "-nostats", "-v", "error",
		"-i", path,
		"-vn", "-ac", "1", "-ar", strconv.Itoa(d.SampleRate),
		"-f", "f32le", "pipe:1",
	}
	cmd := exec.CommandContext(ctx, d.FFmpegBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v: %s", ErrDecode, err, strings.TrimSpace(stderr.String()))
	}
	samples, err := ParseF32LE(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// ParseF32LE converts raw little-endian float32 PCM to samples.
func ParseF32LE(raw []byte) ([]float64, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: truncated pcm stream (%d bytes)", ErrDecode, len(raw))
	}
	out := make([]float64, len(raw)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
	}
	return out, nil
}

// Analyzer decodes a recording and extracts its features.
type Analyzer struct {
	decoder   *Decoder
	extractor *Extractor
	logger    *zap.Logger
}

// NewAnalyzer wires a decoder and extractor.
func NewAnalyzer(decoder *Decoder, extractor *Extractor, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{decoder: decoder, extractor: extractor, logger: logger}
}

// AnalyzeFile decodes the file at path and returns its acoustic features.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (models.AudioFeatures, error) {
	samples, err := a.decoder.DecodeFile(ctx, path)
	if err != nil {
		return models.AudioFeatures{}, err
	}
	features, err := a.extractor.Extract(samples, a.decoder.SampleRate)
	if err != nil {
		return models.AudioFeatures{}, err
	}
	a.logger.Info("audio features extracted",
		zap.Float64("duration_seconds", features.DurationSeconds),
		zap.Float64("average_volume", features.AverageVolume),
		zap.Float64("silence_ratio", features.SilenceRatio),
	)
	return features, nil
}
