// internal/judge/dispatcher_test.go
package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/criteria"
	"hskk-assessor/internal/scorers"
	"hskk-assessor/internal/transcribe"
)

type stubCaller struct {
	response string
	err      error
	called   bool
}

func (s *stubCaller) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.called = true
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testPayload() Payload {
	return Payload{
		TaskID:   "HSKKSC2",
		TaskName: "Nghe và trả lời (câu ngắn)",
		Variants: []transcribe.Variant{
			{BackendID: "whisper", OK: true, Text: "我喜欢喝茶"},
			{BackendID: "gemini", OK: true, Text: "我喜欢喝茶"},
		},
		Divergence: 0.0,
		PreScores: map[criteria.CriterionType]scorers.Result{
			criteria.Pronunciation: {
				Score: 0.4, MaxScore: 0.5, Level: scorers.LevelGood,
				Issues: []string{"Độ trong của giọng chưa tốt (HNR thấp)"}, Feedback: "raw",
			},
			criteria.Fluency: {
				Score: 0.5, MaxScore: 0.5, Level: scorers.LevelExcellent, Feedback: "raw",
			},
		},
		JudgedCriteria: []criteria.CriterionSpec{
			{Type: criteria.TaskAchievement, Source: criteria.SourceJudged, MaxScore: 1.5, DisplayName: "Khả năng hoàn thành yêu cầu"},
			{Type: criteria.Grammar, Source: criteria.SourceJudged, MaxScore: 0.5, DisplayName: "Độ chính xác ngữ pháp"},
		},
	}
}

func newTestDispatcher(t *testing.T, caller Caller) *Dispatcher {
	t.Helper()
	return NewDispatcher(caller, logger.NewTestLogger(t))
}

func TestDispatchMergesJudgedScores(t *testing.T) {
	caller := &stubCaller{response: `{
		"criteria": {
			"task_achievement": {"score": 1.2, "feedback": "Trả lời đúng trọng tâm.", "issues": []},
			"grammar": {"score": 0.4, "feedback": "Ngữ pháp ổn.", "issues": ["Thiếu trợ từ"]}
		},
		"overall_feedback": "Bài nói khá tốt."
	}`}

	res := newTestDispatcher(t, caller).Dispatch(context.Background(), testPayload())

	require.Len(t, res.Results, 4)
	assert.False(t, res.Degraded)
	assert.Equal(t, "Bài nói khá tốt.", res.OverallFeedback)

	ta := res.Results[criteria.TaskAchievement]
	assert.InDelta(t, 1.2, ta.Score, 1e-9)
	assert.Equal(t, scorers.LevelGood, ta.Level)

	gr := res.Results[criteria.Grammar]
	assert.InDelta(t, 0.4, gr.Score, 1e-9)
	assert.Contains(t, gr.Issues, "Thiếu trợ từ")
}

func TestDispatchAcousticScoresAreImmutable(t *testing.T) {
	// A tampering judge reports its own numbers for the acoustic criteria.
	caller := &stubCaller{response: `{
		"criteria": {
			"task_achievement": {"score": 1.0, "feedback": "ok"},
			"grammar": {"score": 0.5, "feedback": "ok"},
			"pronunciation": {"score": 0.1, "feedback": "Phát âm cần luyện thêm.", "issues": ["Giọng hơi rè"]},
			"fluency": {"score": 0.0, "feedback": ""}
		}
	}`}

	p := testPayload()
	res := newTestDispatcher(t, caller).Dispatch(context.Background(), p)

	pron := res.Results[criteria.Pronunciation]
	// Score and level survive, the judge only rewrote the words.
	assert.InDelta(t, 0.4, pron.Score, 1e-9)
	assert.Equal(t, scorers.LevelGood, pron.Level)
	assert.Equal(t, "Phát âm cần luyện thêm.", pron.Feedback)
	assert.Equal(t, []string{"Giọng hơi rè"}, pron.Issues)

	flu := res.Results[criteria.Fluency]
	assert.InDelta(t, 0.5, flu.Score, 1e-9)
	assert.Equal(t, "raw", flu.Feedback)
}

func TestDispatchAcceptsFeedbackOnlyAcousticEntry(t *testing.T) {
	// The judge follows its instructions and sends no score for the
	// acoustic criteria. That must validate and merge, not degrade.
	caller := &stubCaller{response: `{
		"criteria": {
			"task_achievement": {"score": 1.2, "feedback": "Trả lời đúng trọng tâm."},
			"grammar": {"score": 0.4},
			"pronunciation": {"feedback": "Giọng khá rõ, chú ý âm cuối.", "issues": ["Âm cuối chưa rõ"]}
		},
		"overall_feedback": "Khá tốt."
	}`}

	res := newTestDispatcher(t, caller).Dispatch(context.Background(), testPayload())

	assert.False(t, res.Degraded)
	assert.InDelta(t, 1.2, res.Results[criteria.TaskAchievement].Score, 1e-9)

	pron := res.Results[criteria.Pronunciation]
	assert.InDelta(t, 0.4, pron.Score, 1e-9)
	assert.Equal(t, scorers.LevelGood, pron.Level)
	assert.Equal(t, "Giọng khá rõ, chú ý âm cuối.", pron.Feedback)
	assert.Equal(t, []string{"Âm cuối chưa rõ"}, pron.Issues)
}

func TestDispatchJudgedEntryWithoutScoreGetsPlaceholder(t *testing.T) {
	caller := &stubCaller{response: `{
		"criteria": {
			"task_achievement": {"feedback": "quên chấm điểm"},
			"grammar": {"score": 0.4}
		}
	}`}

	res := newTestDispatcher(t, caller).Dispatch(context.Background(), testPayload())

	assert.True(t, res.Degraded)
	ta := res.Results[criteria.TaskAchievement]
	assert.Equal(t, scorers.LevelError, ta.Level)
	assert.Contains(t, ta.Issues, IssueJudgmentFailed)
	// The scored criterion is unaffected.
	assert.InDelta(t, 0.4, res.Results[criteria.Grammar].Score, 1e-9)
	assert.NotEqual(t, scorers.LevelError, res.Results[criteria.Grammar].Level)
}

func TestDispatchSkipsAcousticEntryWithoutPreScore(t *testing.T) {
	caller := &stubCaller{response: `{
		"criteria": {
			"task_achievement": {"score": 1.0},
			"grammar": {"score": 0.3},
			"pronunciation": {"score": 0.5, "feedback": "invented"}
		}
	}`}

	p := testPayload()
	delete(p.PreScores, criteria.Pronunciation)

	res := newTestDispatcher(t, caller).Dispatch(context.Background(), p)

	// No deterministic score, no entry. The judge's number is never adopted.
	_, exists := res.Results[criteria.Pronunciation]
	assert.False(t, exists)
}

func TestDispatchClampsOutOfRangeJudgedScores(t *testing.T) {
	caller := &stubCaller{response: `{
		"criteria": {
			"task_achievement": {"score": 99.0},
			"grammar": {"score": -2.0}
		}
	}`}

	res := newTestDispatcher(t, caller).Dispatch(context.Background(), testPayload())

	assert.InDelta(t, 1.5, res.Results[criteria.TaskAchievement].Score, 1e-9)
	assert.InDelta(t, 0.0, res.Results[criteria.Grammar].Score, 1e-9)
}

func TestDispatchCallFailureYieldsPlaceholders(t *testing.T) {
	caller := &stubCaller{err: errors.New("connection refused")}

	res := newTestDispatcher(t, caller).Dispatch(context.Background(), testPayload())

	assert.True(t, res.Degraded)
	require.Len(t, res.Results, 4)

	ta := res.Results[criteria.TaskAchievement]
	assert.Zero(t, ta.Score)
	assert.InDelta(t, 1.5, ta.MaxScore, 1e-9)
	assert.Equal(t, scorers.LevelError, ta.Level)
	assert.Contains(t, ta.Issues, IssueJudgmentFailed)
	assert.NotEmpty(t, ta.Feedback)

	// Acoustic results survive untouched.
	assert.InDelta(t, 0.4, res.Results[criteria.Pronunciation].Score, 1e-9)
	assert.Equal(t, "raw", res.Results[criteria.Pronunciation].Feedback)
}

func TestDispatchMalformedResponseYieldsPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "sorry, I cannot help with that"},
		{"missing criteria key", `{"overall_feedback": "ok"}`},
		{"score is a string", `{"criteria": {"grammar": {"score": "five"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &stubCaller{response: tt.response}
			res := newTestDispatcher(t, caller).Dispatch(context.Background(), testPayload())

			assert.True(t, res.Degraded)
			assert.Equal(t, scorers.LevelError, res.Results[criteria.TaskAchievement].Level)
			assert.Equal(t, scorers.LevelError, res.Results[criteria.Grammar].Level)
		})
	}
}

func TestDispatchOmittedCriterionGetsPlaceholder(t *testing.T) {
	caller := &stubCaller{response: `{
		"criteria": {"task_achievement": {"score": 1.0}}
	}`}

	res := newTestDispatcher(t, caller).Dispatch(context.Background(), testPayload())

	assert.True(t, res.Degraded)
	assert.Equal(t, scorers.LevelError, res.Results[criteria.Grammar].Level)
	assert.InDelta(t, 1.0, res.Results[criteria.TaskAchievement].Score, 1e-9)
}

func TestDispatchReferenceMissingIssue(t *testing.T) {
	caller := &stubCaller{response: `{
		"criteria": {
			"task_achievement": {"score": 0.8, "feedback": "Ước lượng từ bản ghi."},
			"grammar": {"score": 0.4}
		}
	}`}

	p := testPayload()
	p.JudgedCriteria[0].RequiresReference = true
	p.ReferenceMissing = true

	res := newTestDispatcher(t, caller).Dispatch(context.Background(), p)

	assert.Contains(t, res.Results[criteria.TaskAchievement].Issues, IssueReferenceMissing)
	assert.NotContains(t, res.Results[criteria.Grammar].Issues, IssueReferenceMissing)
}
