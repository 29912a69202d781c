// internal/scorers/pronunciation.go
package scorers

import (
	"strings"

	"hskk-assessor/internal/acoustic"
	"hskk-assessor/internal/criteria"
)

// Voice quality thresholds. HNR in dB, jitter and shimmer as ratios.
const (
	hnrExcellent  = 20.0
	hnrGood       = 15.0
	hnrAcceptable = 10.0

	jitterExcellent  = 0.01
	jitterAcceptable = 0.015
	jitterPoor       = 0.02

	shimmerExcellent  = 0.05
	shimmerAcceptable = 0.08
	shimmerPoor       = 0.12
)

// PronunciationScorer rates articulation quality from voicing measurements.
// Each degraded measurement contributes a fractional deduction; the total
// deduction is capped at 1.0 so the score never goes negative.
type PronunciationScorer struct{}

func NewPronunciationScorer() *PronunciationScorer {
	return &PronunciationScorer{}
}

func (s *PronunciationScorer) Type() criteria.CriterionType {
	return criteria.Pronunciation
}

func (s *PronunciationScorer) Score(fv acoustic.FeatureVector, maxScore float64) Result {
	var deduction float64
	var issues []string

	var hnrQuality string
	switch {
	case fv.HNRMean >= hnrExcellent:
		hnrQuality = "excellent"
	case fv.HNRMean >= hnrGood:
		hnrQuality = "good"
		deduction += 0.15
	case fv.HNRMean >= hnrAcceptable:
		hnrQuality = "acceptable"
		deduction += 0.3
		issues = append(issues, "Độ trong của giọng chưa tốt (HNR thấp)")
	default:
		hnrQuality = "poor"
		deduction += 0.5
		issues = append(issues, "Giọng nói có nhiều nhiễu, thiếu độ trong")
	}

	var jitterQuality string
	switch {
	case fv.JitterLocal <= jitterExcellent:
		jitterQuality = "excellent"
	case fv.JitterLocal <= jitterAcceptable:
		jitterQuality = "acceptable"
		deduction += 0.15
	case fv.JitterLocal <= jitterPoor:
		jitterQuality = "poor"
		deduction += 0.25
		issues = append(issues, "Tần số giọng không ổn định (jitter cao)")
	default:
		jitterQuality = "very_poor"
		deduction += 0.35
		issues = append(issues, "Giọng nói thiếu ổn định nghiêm trọng")
	}

	var shimmerQuality string
	switch {
	case fv.ShimmerLocal <= shimmerExcellent:
		shimmerQuality = "excellent"
	case fv.ShimmerLocal <= shimmerAcceptable:
		shimmerQuality = "acceptable"
		deduction += 0.15
	case fv.ShimmerLocal <= shimmerPoor:
		shimmerQuality = "poor"
		deduction += 0.25
		issues = append(issues, "Âm lượng không đều (shimmer cao)")
	default:
		shimmerQuality = "very_poor"
		deduction += 0.35
		issues = append(issues, "Âm lượng biến thiên quá lớn")
	}

	if deduction > 1.0 {
		deduction = 1.0
	}

	score := round2(maxScore * (1 - deduction))
	score, _ = clampScore(score, maxScore)

	result := Result{
		Score:    score,
		MaxScore: maxScore,
		Issues:   issues,
		Details: map[string]interface{}{
			"hnr_mean":        fv.HNRMean,
			"hnr_quality":     hnrQuality,
			"jitter_local":    fv.JitterLocal,
			"jitter_quality":  jitterQuality,
			"shimmer_local":   fv.ShimmerLocal,
			"shimmer_quality": shimmerQuality,
			"pitch_range":     fv.PitchRange,
			"pitch_std":       fv.PitchStd,
			"f1_mean":         fv.F1Mean,
			"f2_mean":         fv.F2Mean,
		},
	}
	result.Level = LevelFor(result.Percentage())
	result.Feedback = pronunciationFeedback(result.Level, issues)
	return result
}

func pronunciationFeedback(level Level, issues []string) string {
	switch level {
	case LevelExcellent:
		return "Phát âm rõ ràng, không có lỗi sai. Giọng đọc tự nhiên, gần với chuẩn phổ thông."
	case LevelGood:
		return "Phát âm tương đối tốt, có một vài điểm cần cải thiện nhỏ."
	case LevelAcceptable:
		head := issues
		if len(head) > 2 {
			head = head[:2]
		}
		return "Phát âm cơ bản đạt yêu cầu nhưng cần cải thiện: " + strings.Join(head, "; ")
	default:
		return "Mức độ kiểm soát cơ quan phát âm chưa tốt. Các vấn đề cần khắc phục: " + strings.Join(issues, "; ")
	}
}
