// Package scorers computes deterministic criterion scores from acoustic
// measurements. Same feature vector in, same score out.
package scorers

import (
	"math"

	"hskk-assessor/internal/acoustic"
	"hskk-assessor/internal/criteria"
)

// Level is the qualitative tier attached to a criterion score.
type Level string

const (
	LevelExcellent  Level = "excellent"
	LevelGood       Level = "good"
	LevelAcceptable Level = "acceptable"
	LevelPoor       Level = "poor"
	// LevelError marks a criterion whose scoring engine failed outright.
	LevelError Level = "error"
)

// LevelFor maps a score percentage to its tier.
func LevelFor(percentage float64) Level {
	switch {
	case percentage >= 90:
		return LevelExcellent
	case percentage >= 70:
		return LevelGood
	case percentage >= 50:
		return LevelAcceptable
	default:
		return LevelPoor
	}
}

// Result is one criterion's scoring outcome.
type Result struct {
	Score    float64                `json:"score"`
	MaxScore float64                `json:"max_score"`
	Level    Level                  `json:"level"`
	Issues   []string               `json:"issues"`
	Feedback string                 `json:"feedback"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Percentage returns the score as a percentage of the maximum, 0 when the
// maximum is not positive.
func (r Result) Percentage() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return r.Score / r.MaxScore * 100
}

// AcousticScorer scores one criterion from a feature vector.
type AcousticScorer interface {
	Type() criteria.CriterionType
	Score(fv acoustic.FeatureVector, maxScore float64) Result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// clampScore forces a computed score into [0, max]. Returns the clamped
// value and whether clamping happened.
func clampScore(score, max float64) (float64, bool) {
	if score < 0 {
		return 0, true
	}
	if score > max {
		return max, true
	}
	return score, false
}
