// internal/judge/schema.go
package judge

// responseSchema is enforced on the judge's raw answer before any value is
// read out of it. Entries carry no required score: acoustic criteria come
// back feedback-only, and a judged criterion missing its score degrades to a
// placeholder downstream instead of failing the whole response.
const responseSchema = `{
  "type": "object",
  "required": ["criteria"],
  "properties": {
    "criteria": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "score": {"type": "number"},
          "feedback": {"type": "string"},
          "issues": {
            "type": "array",
            "items": {"type": "string"}
          }
        }
      }
    },
    "overall_feedback": {"type": "string"}
  }
}`

// judgeResponse mirrors the schema above.
type judgeResponse struct {
	Criteria        map[string]judgeCriterion `json:"criteria"`
	OverallFeedback string                    `json:"overall_feedback"`
}

// Score is a pointer so a feedback-only entry is distinguishable from an
// explicit zero.
type judgeCriterion struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
	Issues   []string `json:"issues"`
}
