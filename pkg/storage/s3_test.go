package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAudioKey(t *testing.T) {
	at := time.Unix(1700000000, 42)
	key := AudioKey("user-1", "../../clip.wav", at)
	assert.Equal(t, "audio/user-1/1700000000000000042_clip.wav", key)
}

func TestValidateAudioFile(t *testing.T) {
	assert.True(t, ValidateAudioFile("take.WAV"))
	assert.True(t, ValidateAudioFile("voice.webm"))
	assert.False(t, ValidateAudioFile("notes.txt"))
	assert.False(t, ValidateAudioFile("noext"))
}

func TestContentTypeForFilename(t *testing.T) {
	assert.Equal(t, "audio/mpeg", ContentTypeForFilename("a.mp3"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("a.bin"))
}

func TestPublicObjectURL(t *testing.T) {
	cfg := S3Config{Region: "eu-west-1", AudioBucket: "recordings"}
	assert.Equal(t, "https://recordings.s3.eu-west-1.amazonaws.com/audio/u/1_a.wav", PublicObjectURL(cfg, "audio/u/1_a.wav"))

	cfg.PublicBaseURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/audio/u/1_a.wav", PublicObjectURL(cfg, "audio/u/1_a.wav"))
}
