package audio

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseF32LE(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw, math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(-1))

	samples, err := ParseF32LE(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, -1}, samples)
}

func TestParseF32LETruncated(t *testing.T) {
	_, err := ParseF32LE([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeFileMissingBinary(t *testing.T) {
	d := NewDecoder(filepath.Join(t.TempDir(), "no-ffmpeg"), DefaultSampleRate)
	_, err := d.DecodeFile(context.Background(), "clip.wav")
	require.ErrorIs(t, err, ErrDecode)
}

// writeWAV writes 16-bit mono PCM.
func writeWAV(t *testing.T, path string, samples []float64, sampleRate int) {
	t.Helper()
	data := make([]byte, 44+2*len(samples))
	copy(data[0:], "RIFF")
	binary.LittleEndian.PutUint32(data[4:], uint32(36+2*len(samples)))
	copy(data[8:], "WAVEfmt ")
	binary.LittleEndian.PutUint32(data[16:], 16)
	binary.LittleEndian.PutUint16(data[20:], 1)
	binary.LittleEndian.PutUint16(data[22:], 1)
	binary.LittleEndian.PutUint32(data[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(data[28:], uint32(2*sampleRate))
	binary.LittleEndian.PutUint16(data[32:], 2)
	binary.LittleEndian.PutUint16(data[34:], 16)
	copy(data[36:], "data")
	binary.LittleEndian.PutUint32(data[40:], uint32(2*len(samples)))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[44+2*i:], uint16(int16(s*32767)))
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestAnalyzerWithFFmpeg(t *testing.T) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, sine(220, 0.5, 2, DefaultSampleRate), DefaultSampleRate)

	a := NewAnalyzer(NewDecoder(bin, DefaultSampleRate), NewExtractor(), nil)
	f, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, f.DurationSeconds, 0.01)
	assert.InDelta(t, 220, f.AveragePitchHz, 3)
}
