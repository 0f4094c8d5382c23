package quiz

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoAnswers = errors.New("quiz submission has no answers")

// Answer values range from 0 (never) to 3 (always).
const maxAnswerValue = 3

// Relationship profiles, ordered from highest score band to lowest.
const (
	ProfileThriving   = "thriving"
	ProfileStable     = "stable"
	ProfileStrained   = "strained"
	ProfileStruggling = "struggling"
)

// Result is a stored quiz submission with its computed score and profile.
type Result struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email,omitempty"`
	Answers   map[string]int `json:"answers"`
	Score     int            `json:"score"`
	Profile   string         `json:"profile"`
	CreatedAt time.Time      `json:"created_at"`
}

// Score sums the answer values and maps the total onto a profile band
// relative to the maximum possible score for the submitted question count.
// Values outside 0..3 are clamped rather than rejected, since older quiz
// clients sent 1-based scales.
func Score(answers map[string]int) (int, string, error) {
	if len(answers) == 0 {
		return 0, "", ErrNoAnswers
	}

	total := 0
	for _, v := range answers {
		if v < 0 {
			v = 0
		}
		if v > maxAnswerValue {
			v = maxAnswerValue
		}
		total += v
	}

	maxTotal := len(answers) * maxAnswerValue
	ratio := float64(total) / float64(maxTotal)

	switch {
	case ratio >= 0.75:
		return total, ProfileThriving, nil
	case ratio >= 0.5:
		return total, ProfileStable, nil
	case ratio >= 0.25:
		return total, ProfileStrained, nil
	default:
		return total, ProfileStruggling, nil
	}
}
