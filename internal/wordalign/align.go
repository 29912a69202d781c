// Package wordalign maps recognized word timings onto the voiced intervals
// the acoustic engine measured, producing per word delivery feedback.
package wordalign

import (
	"fmt"
	"math"
	"strings"

	"hskk-assessor/internal/acoustic"
	"hskk-assessor/internal/transcribe"
)

const (
	defaultPitchMean = 200.0
	defaultHNRMean   = 15.0

	pitchDeviationRatio = 0.5
	pitchStdThreshold   = 50.0
	hnrPoorThreshold    = 8.0
	hnrLowRatio         = 0.6

	chinesePunctuation = "。，！？、"
)

// Quality tiers for a single word.
const (
	QualityGood             = "good"
	QualityNeedsImprovement = "needs_improvement"
	QualityPoor             = "poor"
	QualityNoData           = "no_data"
)

// WordReport is the per word assessment.
type WordReport struct {
	Word      string   `json:"word"`
	Start     float64  `json:"start"`
	End       float64  `json:"end"`
	PitchMean float64  `json:"pitch_mean"`
	PitchStd  float64  `json:"pitch_std"`
	HNR       float64  `json:"hnr"`
	Quality   string   `json:"quality"`
	Issues    []string `json:"issues,omitempty"`
}

// Summary aggregates the word reports.
type Summary struct {
	TotalWords       int     `json:"total_words"`
	Good             int     `json:"good"`
	NeedsImprovement int     `json:"needs_improvement"`
	Poor             int     `json:"poor"`
	NoData           int     `json:"no_data"`
	AvgPitch         float64 `json:"avg_pitch"`
	AvgHNR           float64 `json:"avg_hnr"`
}

// Analysis is the full word level report.
type Analysis struct {
	Words   []WordReport `json:"words"`
	Summary Summary      `json:"summary"`
}

// Align assesses every recognized word against the interval that overlaps it
// the most. Punctuation tokens are skipped. Words outside any voiced interval
// get the no_data quality.
func Align(words []transcribe.Word, intervals []acoustic.Interval) *Analysis {
	meanPitch, meanHNR := overallMeans(intervals)

	analysis := &Analysis{}
	for _, w := range words {
		if isPunctuation(w.Text) {
			continue
		}
		report := assessWord(w, bestOverlap(w, intervals), meanPitch, meanHNR)
		analysis.Words = append(analysis.Words, report)
	}

	analysis.Summary = summarize(analysis.Words)
	return analysis
}

// overallMeans averages pitch and HNR over voiced intervals, falling back to
// typical speech values when the engine measured nothing.
func overallMeans(intervals []acoustic.Interval) (pitch, hnr float64) {
	var pitchSum, hnrSum float64
	var n int
	for _, iv := range intervals {
		if iv.PitchMean > 0 {
			pitchSum += iv.PitchMean
			hnrSum += iv.HNR
			n++
		}
	}
	if n == 0 {
		return defaultPitchMean, defaultHNRMean
	}
	return pitchSum / float64(n), hnrSum / float64(n)
}

// bestOverlap picks the interval sharing the most time with the word, nil
// when nothing overlaps.
func bestOverlap(w transcribe.Word, intervals []acoustic.Interval) *acoustic.Interval {
	var best *acoustic.Interval
	var bestOverlap float64
	for i := range intervals {
		iv := &intervals[i]
		overlap := math.Min(w.End, iv.End) - math.Max(w.Start, iv.Start)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = iv
		}
	}
	return best
}

func assessWord(w transcribe.Word, iv *acoustic.Interval, meanPitch, meanHNR float64) WordReport {
	report := WordReport{
		Word:  w.Text,
		Start: w.Start,
		End:   w.End,
	}

	if iv == nil || iv.PitchMean <= 0 {
		report.Quality = QualityNoData
		report.Issues = []string{"Không có dữ liệu âm thanh"}
		return report
	}

	report.PitchMean = iv.PitchMean
	report.PitchStd = iv.PitchStd
	report.HNR = iv.HNR

	deviation := math.Abs(iv.PitchMean - meanPitch)
	if meanPitch > 0 && deviation/meanPitch > pitchDeviationRatio {
		report.Issues = append(report.Issues, fmt.Sprintf("Cao độ lệch (%.0fHz)", deviation))
	}
	if iv.PitchStd > pitchStdThreshold {
		report.Issues = append(report.Issues, "Thanh điệu không ổn định")
	}

	poor := false
	if iv.HNR < hnrPoorThreshold {
		report.Issues = append(report.Issues, fmt.Sprintf("Giọng chưa rõ (HNR=%.1f)", iv.HNR))
		poor = true
	} else if iv.HNR < hnrLowRatio*meanHNR {
		report.Issues = append(report.Issues, "Độ trong giọng thấp")
	}

	switch {
	case poor:
		report.Quality = QualityPoor
	case len(report.Issues) > 0:
		report.Quality = QualityNeedsImprovement
	default:
		report.Quality = QualityGood
	}
	return report
}

func summarize(words []WordReport) Summary {
	s := Summary{TotalWords: len(words)}
	var pitchSum, hnrSum float64
	var measured int
	for _, w := range words {
		switch w.Quality {
		case QualityGood:
			s.Good++
		case QualityNeedsImprovement:
			s.NeedsImprovement++
		case QualityPoor:
			s.Poor++
		case QualityNoData:
			s.NoData++
		}
		if w.PitchMean > 0 {
			pitchSum += w.PitchMean
			hnrSum += w.HNR
			measured++
		}
	}
	if measured > 0 {
		s.AvgPitch = pitchSum / float64(measured)
		s.AvgHNR = hnrSum / float64(measured)
	}
	return s
}

func isPunctuation(token string) bool {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return true
	}
	for _, r := range trimmed {
		if !strings.ContainsRune(chinesePunctuation, r) {
			return false
		}
	}
	return true
}
