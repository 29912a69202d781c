// Package criteria resolves task identifiers to assessment plans.
//
// A task plan lists which criteria a speaking task is scored on, how many
// points each carries, and whether the criterion is computed from acoustic
// measurements or judged from the transcripts. The plan set is closed and
// validated at startup; request handling never meets a malformed plan.
package criteria

// CriterionType identifies one scored dimension of a speaking task.
type CriterionType string

const (
	TaskAchievement CriterionType = "task_achievement"
	Pronunciation   CriterionType = "pronunciation"
	Fluency         CriterionType = "fluency"
	Grammar         CriterionType = "grammar"
	Vocabulary      CriterionType = "vocabulary"
	Coherence       CriterionType = "coherence"
)

// DataSource tells which engine produces a criterion's score.
type DataSource string

const (
	// SourceAcoustic scores come from deterministic formulas over measured
	// audio features.
	SourceAcoustic DataSource = "acoustic"
	// SourceJudged scores come from the language model judge over the
	// transcripts.
	SourceJudged DataSource = "judged"
)

// DefaultSourceFor is the closed mapping from criterion type to the engine
// allowed to score it. Registry validation rejects plans that disagree.
var DefaultSourceFor = map[CriterionType]DataSource{
	TaskAchievement: SourceJudged,
	Pronunciation:   SourceAcoustic,
	Fluency:         SourceAcoustic,
	Grammar:         SourceJudged,
	Vocabulary:      SourceJudged,
	Coherence:       SourceJudged,
}

// CriterionSpec describes one criterion inside a task plan.
type CriterionSpec struct {
	Type              CriterionType `json:"type"`
	Source            DataSource    `json:"source"`
	MaxScore          float64       `json:"max_score"`
	DisplayName       string        `json:"display_name"`
	RequiresReference bool          `json:"requires_reference"`
}

// TaskPlan is the full scoring plan for one task identifier.
type TaskPlan struct {
	TaskID            string          `json:"task_id"`
	TaskName          string          `json:"task_name"`
	Level             string          `json:"level"`
	LevelName         string          `json:"level_name"`
	QuestionCount     int             `json:"question_count"`
	PointsPerQuestion float64         `json:"points_per_question"`
	TotalPoints       float64         `json:"total_points"`
	Criteria          []CriterionSpec `json:"criteria"`
}

// MaxTotal is the sum of criterion max scores for a single question.
func (p TaskPlan) MaxTotal() float64 {
	var total float64
	for _, c := range p.Criteria {
		total += c.MaxScore
	}
	return total
}

// HasAcoustic reports whether the plan contains any acoustic criterion.
func (p TaskPlan) HasAcoustic() bool {
	return len(p.AcousticCriteria()) > 0
}

// HasJudged reports whether the plan contains any judged criterion.
func (p TaskPlan) HasJudged() bool {
	return len(p.JudgedCriteria()) > 0
}

// AcousticCriteria returns the plan's acoustic criteria in plan order.
func (p TaskPlan) AcousticCriteria() []CriterionSpec {
	var out []CriterionSpec
	for _, c := range p.Criteria {
		if c.Source == SourceAcoustic {
			out = append(out, c)
		}
	}
	return out
}

// JudgedCriteria returns the plan's judged criteria in plan order.
func (p TaskPlan) JudgedCriteria() []CriterionSpec {
	var out []CriterionSpec
	for _, c := range p.Criteria {
		if c.Source == SourceJudged {
			out = append(out, c)
		}
	}
	return out
}

// RequiresReference reports whether any criterion needs a reference text for
// full-confidence scoring.
func (p TaskPlan) RequiresReference() bool {
	for _, c := range p.Criteria {
		if c.RequiresReference {
			return true
		}
	}
	return false
}
