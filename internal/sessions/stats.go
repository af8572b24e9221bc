package sessions

import (
	"math"

	"github.com/speechcoach/backend/internal/models"
)

// ComputeStats aggregates sessions (newest first). An empty history yields zero stats with no latest session.
func ComputeStats(list []models.PracticeSession) models.UserStats {
	if len(list) == 0 {
		return models.UserStats{}
	}
	var totalScore, totalWPM float64
	var totalWords int
	for _, s := range list {
		totalScore += s.Score
		totalWords += s.AnalysisData.WordCount
		totalWPM += s.AnalysisData.SpeakingRateWPM
	}
	n := float64(len(list))
	latest := list[0].CreatedAt
	return models.UserStats{
		TotalSessions: len(list),
		AverageScore:  round2(totalScore / n),
		TotalWords:    totalWords,
		AverageWPM:    round2(totalWPM / n),
		LatestSession: &latest,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
