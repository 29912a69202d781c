// internal/judge/dispatcher.go
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "hskk-assessor/internal/common/errors"
	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/common/metrics"
	"hskk-assessor/internal/common/validation"
	"hskk-assessor/internal/criteria"
	"hskk-assessor/internal/scorers"
)

// Issue codes attached to degraded criterion results.
const (
	IssueJudgmentFailed   = "judgment_failed"
	IssueReferenceMissing = "reference_missing"
)

const placeholderFeedback = "Không thể chấm điểm tiêu chí này do lỗi hệ thống. Vui lòng thử lại sau."

const systemPrompt = `You are a certified HSKK (Hanyu Shuiping Kouyu Kaoshi) oral examiner.
You receive several automatic transcriptions of one candidate recording, a
divergence figure telling how much the transcription engines disagree, and
deterministic acoustic scores for pronunciation and fluency.

Score every criterion listed in "judged_criteria" between 0 and its max_score.
Treat high divergence as uncertainty about the exact wording, not as a
candidate error. When "reference_missing" is true, score reference dependent
criteria conservatively from the transcripts alone.

For the acoustic criteria in "pre_scores" you must NOT produce scores; you may
rewrite their feedback in natural Vietnamese, keeping the meaning of the
listed issues.

Respond with JSON only:
{"criteria": {"<criterion_type>": {"score": <number>, "feedback": "<Vietnamese>", "issues": ["<Vietnamese>"]}}, "overall_feedback": "<Vietnamese>"}`

// Dispatcher runs the judge call and merges its answer with the
// deterministic pre-scores. The deterministic score is authoritative for
// every acoustic criterion: the judge can rephrase feedback but never move a
// number.
type Dispatcher struct {
	caller Caller
	log    logger.Logger
}

func NewDispatcher(caller Caller, log logger.Logger) *Dispatcher {
	return &Dispatcher{caller: caller, log: log}
}

// Dispatch never fails the request: a judge breakdown degrades the judged
// criteria to placeholders and leaves the acoustic results untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) DispatchResult {
	results := make(map[criteria.CriterionType]scorers.Result, len(p.PreScores)+len(p.JudgedCriteria))
	for typ, pre := range p.PreScores {
		results[typ] = pre
	}

	resp, err := d.evaluate(ctx, p)
	if err != nil {
		metrics.JudgeCalls.WithLabelValues("error").Inc()
		d.log.WithError(err).Error("judge dispatch failed, degrading judged criteria", map[string]interface{}{
			"task_id": p.TaskID,
		})
		for _, spec := range p.JudgedCriteria {
			results[spec.Type] = placeholderResult(spec)
		}
		return DispatchResult{Results: results, Degraded: true}
	}
	metrics.JudgeCalls.WithLabelValues("success").Inc()

	degraded := false
	for _, spec := range p.JudgedCriteria {
		entry, ok := resp.Criteria[string(spec.Type)]
		if !ok || entry.Score == nil {
			d.log.Warn("judge omitted a criterion score", map[string]interface{}{
				"task_id":   p.TaskID,
				"criterion": string(spec.Type),
			})
			results[spec.Type] = placeholderResult(spec)
			degraded = true
			continue
		}
		results[spec.Type] = d.judgedResult(spec, entry, p.ReferenceMissing)
	}

	// Feedback rewrite for acoustic criteria. Scores stay deterministic;
	// judge entries without a pre-score are dropped entirely.
	for typ, pre := range p.PreScores {
		entry, ok := resp.Criteria[string(typ)]
		if !ok {
			continue
		}
		merged := pre
		if strings.TrimSpace(entry.Feedback) != "" {
			merged.Feedback = entry.Feedback
		}
		if len(entry.Issues) > 0 {
			merged.Issues = entry.Issues
		}
		results[typ] = merged
	}

	return DispatchResult{
		Results:         results,
		OverallFeedback: resp.OverallFeedback,
		Degraded:        degraded,
	}
}

func (d *Dispatcher) evaluate(ctx context.Context, p Payload) (*judgeResponse, error) {
	userPayload, err := json.Marshal(p)
	if err != nil {
		return nil, apperrors.NewJudgmentFailedError(err)
	}

	raw, err := d.caller.Complete(ctx, systemPrompt, string(userPayload))
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateJSON(responseSchema, raw); err != nil {
		return nil, apperrors.NewJudgmentParseError(err.Error())
	}

	var resp judgeResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, apperrors.NewJudgmentParseError(err.Error())
	}
	return &resp, nil
}

func (d *Dispatcher) judgedResult(spec criteria.CriterionSpec, entry judgeCriterion, referenceMissing bool) scorers.Result {
	score := *entry.Score
	if score < 0 || score > spec.MaxScore {
		metrics.ScoresClamped.WithLabelValues(string(spec.Type)).Inc()
		d.log.Warn("judge score out of range, clamping", map[string]interface{}{
			"criterion": string(spec.Type),
			"score":     score,
			"max_score": spec.MaxScore,
		})
		if score < 0 {
			score = 0
		} else {
			score = spec.MaxScore
		}
	}

	issues := entry.Issues
	if spec.RequiresReference && referenceMissing {
		issues = append(issues, IssueReferenceMissing)
	}

	result := scorers.Result{
		Score:    score,
		MaxScore: spec.MaxScore,
		Issues:   issues,
		Feedback: entry.Feedback,
	}
	result.Level = scorers.LevelFor(result.Percentage())
	if result.Feedback == "" {
		result.Feedback = fmt.Sprintf("%s: %.2f/%.2f", spec.DisplayName, result.Score, result.MaxScore)
	}
	return result
}

func placeholderResult(spec criteria.CriterionSpec) scorers.Result {
	return scorers.Result{
		Score:    0,
		MaxScore: spec.MaxScore,
		Level:    scorers.LevelError,
		Issues:   []string{IssueJudgmentFailed},
		Feedback: placeholderFeedback,
	}
}
