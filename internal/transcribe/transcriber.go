// Package transcribe adapts external speech-to-text backends to a single contract.
package transcribe

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrTranscription marks any failure to obtain a transcript (bad file, unsupported codec, backend down).
var ErrTranscription = errors.New("transcription failed")

// DefaultLanguage is the language hint sent when none is configured.
const DefaultLanguage = "en"

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (Result, error)
}

// Segment is a time-stamped span of the transcript.
type Segment struct {
	StartMs uint64 `json:"start_ms"`
	EndMs   uint64 `json:"end_ms"`
	Text    string `json:"text"`
}

// Result is an immutable transcription.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// WordCount is the number of whitespace-separated words in the transcript.
func (r Result) WordCount() int {
	return len(strings.Fields(r.Text))
}

var thousand = decimal.NewFromInt(1000)

// secondsToMs converts decimal seconds to whole milliseconds, clamping negatives to zero.
func secondsToMs(s decimal.Decimal) uint64 {
	if s.IsNegative() {
		return 0
	}
	return s.Mul(thousand).BigInt().Uint64()
}
