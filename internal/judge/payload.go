// Package judge sends the transcripts to a language model for criterion
// scoring and folds the answer back into the deterministic results.
package judge

import (
	"hskk-assessor/internal/criteria"
	"hskk-assessor/internal/scorers"
	"hskk-assessor/internal/transcribe"
)

// Payload is everything the judge sees for one recording.
type Payload struct {
	TaskID   string `json:"task_id"`
	TaskName string `json:"task_name"`

	// Variants includes failed backends, marked so the judge knows which
	// engines dropped out.
	Variants   []transcribe.Variant `json:"variants"`
	Divergence float64              `json:"divergence"`

	// ReferenceText is the expected utterance for repeat/read tasks. Empty
	// when the caller did not supply one.
	ReferenceText    string `json:"reference_text,omitempty"`
	ReferenceMissing bool   `json:"reference_missing"`

	// PreScores are the deterministic acoustic results. The judge may
	// rephrase their feedback but its numbers for them are never used.
	PreScores map[criteria.CriterionType]scorers.Result `json:"pre_scores"`

	// JudgedCriteria defines what the judge must score.
	JudgedCriteria []criteria.CriterionSpec `json:"judged_criteria"`
}

// DispatchResult is the merged outcome of one judge dispatch.
type DispatchResult struct {
	Results         map[criteria.CriterionType]scorers.Result
	OverallFeedback string
	// Degraded is set when the judge call failed and judged criteria carry
	// placeholder scores.
	Degraded bool
}
