package models

// Difficulty levels of the practice script library.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// PracticeScript is one script picked from the library.
type PracticeScript struct {
	Text       string `json:"text"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	WordCount  int    `json:"word_count"`
}
