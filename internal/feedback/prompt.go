package feedback

import (
	"fmt"
	"strings"

	"github.com/speechcoach/backend/internal/models"
)

const systemPrompt = `You are an expert speech therapist AI assistant. Your role is to provide constructive, encouraging feedback on speech practice sessions.

Your feedback should:
- Be warm, supportive, and encouraging
- Identify specific strengths in the person's speech
- Suggest 2-3 concrete, actionable improvements
- Provide techniques or exercises for improvement
- Be appropriate for the person's skill level
- Focus on one main area for improvement at a time
- End with encouragement and next steps

Analyze the speech data provided and give personalized feedback.`

// sessionPrompt renders the per-session request sent to the provider.
func sessionPrompt(transcription string, m models.SessionMetrics, f models.AudioFeatures) string {
	var b strings.Builder
	b.WriteString("Please analyze this speech practice session and provide feedback:\n\n")
	b.WriteString("TRANSCRIPTION:\n")
	fmt.Fprintf(&b, "\"%s\"\n\n", transcription)
	b.WriteString("SPEECH METRICS:\n")
	fmt.Fprintf(&b, "- Words spoken: %d\n", m.WordCount)
	fmt.Fprintf(&b, "- Speaking rate: %.1f words per minute (ideal: 120-160 wpm)\n", m.SpeakingRateWPM)
	fmt.Fprintf(&b, "- Duration: %.1f seconds\n", f.DurationSeconds)
	fmt.Fprintf(&b, "- Average volume: %.3f (0-1 scale)\n", f.AverageVolume)
	fmt.Fprintf(&b, "- Volume consistency: %.3f\n", f.VolumeVariation)
	fmt.Fprintf(&b, "- Pitch variation: %.2f Hz\n", f.PitchVariation)
	fmt.Fprintf(&b, "- Silence ratio: %.2f (pauses in speech)\n\n", f.SilenceRatio)
	b.WriteString("Please provide:\n")
	b.WriteString("1. What they did well\n")
	b.WriteString("2. One main area for improvement\n")
	b.WriteString("3. Specific technique or exercise to practice\n")
	b.WriteString("4. Encouragement for next session")
	return b.String()
}

// suggestionPrompt renders the history summary request. history is newest first.
func suggestionPrompt(history []models.PracticeSession) string {
	return fmt.Sprintf(`Based on these practice sessions, what should the user focus on?

Session history: %d sessions completed

Recent patterns:
%s

Provide 3 specific practice exercises or focus areas.`, len(history), summarize(history))
}

// summarize averages pace and word count over the most recent sessions.
func summarize(history []models.PracticeSession) string {
	if len(history) == 0 {
		return "No sessions yet"
	}
	recent := history
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}
	var wpm, words float64
	for _, s := range recent {
		wpm += s.AnalysisData.SpeakingRateWPM
		words += float64(s.AnalysisData.WordCount)
	}
	n := float64(len(recent))
	return fmt.Sprintf("Average speaking rate: %.1f wpm, Average words per session: %.1f", wpm/n, words/n)
}
