// internal/scorers/fluency.go
package scorers

import (
	"math"
	"strings"

	"hskk-assessor/internal/acoustic"
	"hskk-assessor/internal/criteria"
)

// Speech rate bands in syllables per minute, pause thresholds in
// seconds/ratios.
const (
	rateTooSlow = 100.0
	rateSlow    = 150.0
	rateFast    = 220.0
	rateTooFast = 280.0

	pauseRatioLimit   = 0.25
	meanPauseLimit    = 0.6
	hesitationPauses  = 10.0
	hesitationMaxMean = 0.5
	stabilityGapLimit = 50.0
)

// Machine-stable problem codes carried in the details for downstream
// consumers; the issue strings are what learners see.
const (
	problemImproperPausing = "ngat_nghi_sai"
	problemHesitation      = "ngap_ngung"
	problemUnstableSpeed   = "toc_do_khong_on_dinh"
)

// FluencyScorer rates delivery smoothness: speech rate, pausing behavior and
// rate stability. The score is the maximum scaled by a multiplier keyed to
// how many distinct problems were detected.
type FluencyScorer struct{}

func NewFluencyScorer() *FluencyScorer {
	return &FluencyScorer{}
}

func (s *FluencyScorer) Type() criteria.CriterionType {
	return criteria.Fluency
}

func (s *FluencyScorer) Score(fv acoustic.FeatureVector, maxScore float64) Result {
	var issues []string
	var problems []string

	switch {
	case fv.SpeechRate < rateTooSlow:
		issues = append(issues, "Tốc độ nói quá chậm")
	case fv.SpeechRate < rateSlow:
		issues = append(issues, "Tốc độ nói hơi chậm")
	case fv.SpeechRate > rateTooFast:
		issues = append(issues, "Tốc độ nói quá nhanh")
	case fv.SpeechRate > rateFast:
		issues = append(issues, "Tốc độ nói hơi nhanh")
	}

	if fv.PauseRatio > pauseRatioLimit {
		issues = append(issues, "Ngắt nghỉ quá nhiều")
		problems = append(problems, problemImproperPausing)
	} else if fv.MeanPauseDuration > meanPauseLimit {
		issues = append(issues, "Thời gian ngắt nghỉ quá dài")
		problems = append(problems, problemImproperPausing)
	}

	// Pause count normalized to a 30 second window so short and long
	// recordings are comparable.
	var normalizedPauses float64
	if fv.Duration > 0 {
		normalizedPauses = float64(fv.NumPauses) / fv.Duration * 30
	}
	if normalizedPauses > hesitationPauses && fv.MeanPauseDuration < hesitationMaxMean {
		issues = append(issues, "Ngập ngừng nhiều lần")
		problems = append(problems, problemHesitation)
	}

	speedGap := math.Abs(fv.ArticulationRate - fv.SpeechRate)
	if speedGap > stabilityGapLimit {
		issues = append(issues, "Tốc độ nói không ổn định")
		problems = append(problems, problemUnstableSpeed)
	}

	var multiplier float64
	switch len(issues) {
	case 0:
		multiplier = 1.0
	case 1:
		multiplier = 0.75
	case 2:
		multiplier = 0.5
	default:
		multiplier = 0.25
	}

	score := round2(maxScore * multiplier)
	score, _ = clampScore(score, maxScore)

	result := Result{
		Score:    score,
		MaxScore: maxScore,
		Issues:   issues,
		Details: map[string]interface{}{
			"speech_rate":         fv.SpeechRate,
			"pause_ratio":         round3(fv.PauseRatio),
			"num_pauses":          fv.NumPauses,
			"mean_pause_duration": round3(fv.MeanPauseDuration),
			"articulation_rate":   fv.ArticulationRate,
			"speed_stability":     round2(speedGap),
			"detected_problems":   problems,
		},
	}
	result.Level = LevelFor(result.Percentage())
	result.Feedback = fluencyFeedback(result.Level, issues)
	return result
}

func fluencyFeedback(level Level, issues []string) string {
	switch level {
	case LevelExcellent:
		return "Tốc độ lời nói ổn định, không có ngập ngừng đáng kể. Ngữ điệu tự nhiên."
	case LevelGood:
		return "Độ trôi chảy tốt, có một điểm cần cải thiện: " + issues[0] + "."
	case LevelAcceptable:
		head := issues
		if len(head) > 2 {
			head = head[:2]
		}
		return "Mạch lời nói cơ bản đạt yêu cầu. Cần cải thiện: " + strings.Join(head, "; ")
	default:
		return "Mạch lời nói rời rạc, thiếu sự điều tiết về nhịp và cao độ. Các vấn đề: " + strings.Join(issues, "; ")
	}
}
