package feedback

import (
	"strings"

	"github.com/speechcoach/backend/internal/models"
)

// Fallback bands. These are deliberately simpler than the scorer's bands and may disagree with them.
const (
	fallbackSlowWPM    = 120.0
	fallbackFastWPM    = 160.0
	fallbackQuietLevel = 0.02
	fallbackLoudLevel  = 0.1
)

// Fallback builds deterministic coaching text from pace and volume alone.
func Fallback(wpm float64, f models.AudioFeatures) string {
	var b strings.Builder
	b.WriteString("Great job completing this practice session!\n\n")

	switch {
	case wpm < fallbackSlowWPM:
		b.WriteString("Try to speak a bit faster. A comfortable pace is 120-160 words per minute.\n")
	case wpm > fallbackFastWPM:
		b.WriteString("Try to slow down slightly. Take time to articulate each word clearly.\n")
	default:
		b.WriteString("Your speaking pace is excellent!\n")
	}

	switch {
	case f.AverageVolume < fallbackQuietLevel:
		b.WriteString("Try to project your voice more. Speak louder and with more confidence.\n")
	case f.AverageVolume > fallbackLoudLevel:
		b.WriteString("You're speaking quite loudly. Try to moderate your volume.\n")
	default:
		b.WriteString("Your volume level is great!\n")
	}

	b.WriteString("\nKeep practicing! Consistency is key to improvement.")
	return b.String()
}
