package utils

import (
	"encoding/hex"
	"fmt"
	"io"

	"lukechampine.com/blake3"
)

// HashAudio returns the hex blake3-256 digest of an uploaded recording.
func HashAudio(r io.Reader) (string, error) {
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash audio: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
