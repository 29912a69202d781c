// internal/criteria/registry_test.go
package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hskk-assessor/internal/common/errors"
)

func TestNewRegistryBuiltins(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	ids := r.TaskIDs()
	assert.Len(t, ids, 9)
	assert.Equal(t, []string{
		"HSKKCC1", "HSKKCC2", "HSKKCC3",
		"HSKKSC1", "HSKKSC2", "HSKKSC3",
		"HSKKTC1", "HSKKTC2", "HSKKTC3",
	}, ids)
}

func TestResolveKnownTask(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	plan, err := r.Resolve("HSKKSC1")
	require.NoError(t, err)

	assert.Equal(t, "beginner", plan.LevelName)
	assert.Equal(t, 15, plan.QuestionCount)
	require.Len(t, plan.Criteria, 3)
	assert.Equal(t, TaskAchievement, plan.Criteria[0].Type)
	assert.True(t, plan.Criteria[0].RequiresReference)
	assert.InDelta(t, 2.0, plan.MaxTotal(), 1e-9)
	assert.True(t, plan.HasAcoustic())
	assert.True(t, plan.HasJudged())
	assert.True(t, plan.RequiresReference())
}

func TestResolveUnknownTask(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Resolve("HSKKXX9")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTaskNotFound))
}

func TestCriteriaSplit(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	plan, err := r.Resolve("HSKKCC3")
	require.NoError(t, err)

	acoustic := plan.AcousticCriteria()
	judged := plan.JudgedCriteria()
	assert.Len(t, acoustic, 2)
	assert.Len(t, judged, 4)
	assert.InDelta(t, 25.0, plan.MaxTotal(), 1e-9)
}

func TestRegistryValidation(t *testing.T) {
	base := CriterionSpec{
		Type: Pronunciation, Source: SourceAcoustic, MaxScore: 1.0, DisplayName: namePronunciation,
	}

	tests := []struct {
		name  string
		plans []TaskPlan
	}{
		{
			name:  "empty plan set",
			plans: nil,
		},
		{
			name: "no criteria",
			plans: []TaskPlan{
				{TaskID: "T1"},
			},
		},
		{
			name: "non-positive max score",
			plans: []TaskPlan{
				{TaskID: "T1", Criteria: []CriterionSpec{
					{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 0},
				}},
			},
		},
		{
			name: "duplicate criterion type",
			plans: []TaskPlan{
				{TaskID: "T1", Criteria: []CriterionSpec{base, base}},
			},
		},
		{
			name: "acoustic criterion claims judged source",
			plans: []TaskPlan{
				{TaskID: "T1", Criteria: []CriterionSpec{
					{Type: Pronunciation, Source: SourceJudged, MaxScore: 1.0},
				}},
			},
		},
		{
			name: "judged criterion claims acoustic source",
			plans: []TaskPlan{
				{TaskID: "T1", Criteria: []CriterionSpec{
					{Type: Grammar, Source: SourceAcoustic, MaxScore: 1.0},
				}},
			},
		},
		{
			name: "unknown criterion type",
			plans: []TaskPlan{
				{TaskID: "T1", Criteria: []CriterionSpec{
					{Type: CriterionType("intonation"), Source: SourceAcoustic, MaxScore: 1.0},
				}},
			},
		},
		{
			name: "duplicate task id",
			plans: []TaskPlan{
				{TaskID: "T1", Criteria: []CriterionSpec{base}},
				{TaskID: "T1", Criteria: []CriterionSpec{base}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistryWithPlans(tt.plans)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigurationInvalid))
		})
	}
}

func TestDescribe(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	plan, maxTotal, err := r.Describe("HSKKCC2")
	require.NoError(t, err)
	assert.Equal(t, "Đọc đoạn văn", plan.TaskName)
	assert.InDelta(t, 20.0, maxTotal, 1e-9)

	_, _, err = r.Describe("nope")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTaskNotFound))
}
