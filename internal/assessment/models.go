// Package assessment orchestrates the full scoring pipeline for one
// recording: acoustic extraction, transcription fanout, deterministic
// scoring, judge dispatch and aggregation.
package assessment

import (
	"hskk-assessor/internal/scorers"
	"hskk-assessor/internal/wordalign"
)

// Request is one scoring request.
type Request struct {
	Audio               []byte
	Filename            string
	TaskID              string
	ReferenceText       string
	IncludeWordAnalysis bool
}

// CriterionResult is the wire shape of one criterion's outcome.
type CriterionResult struct {
	Score      float64                `json:"score"`
	MaxScore   float64                `json:"max_score"`
	Percentage float64                `json:"percentage"`
	Level      string                 `json:"level"`
	Issues     []string               `json:"issues"`
	Feedback   string                 `json:"feedback"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// AssessmentResult is the full response for one recording.
type AssessmentResult struct {
	AssessmentID    string                     `json:"assessment_id"`
	Success         bool                       `json:"success"`
	Partial         bool                       `json:"partial"`
	TaskID          string                     `json:"task_id"`
	TotalScore      float64                    `json:"total_score"`
	MaxTotalScore   float64                    `json:"max_total_score"`
	TotalPercentage float64                    `json:"total_percentage"`
	Scores          map[string]CriterionResult `json:"scores"`
	OverallFeedback string                     `json:"overall_feedback,omitempty"`
	WordAnalysis    *wordalign.Analysis        `json:"word_analysis,omitempty"`
	ProcessingTime  float64                    `json:"processing_time"`
	ErrorMessage    string                     `json:"error_message,omitempty"`
}

func toCriterionResult(r scorers.Result) CriterionResult {
	issues := r.Issues
	if issues == nil {
		issues = []string{}
	}
	return CriterionResult{
		Score:      r.Score,
		MaxScore:   r.MaxScore,
		Percentage: round1(r.Percentage()),
		Level:      string(r.Level),
		Issues:     issues,
		Feedback:   r.Feedback,
		Details:    r.Details,
	}
}
