// internal/criteria/tasks.go
package criteria

// Display names used across plans. Larger open-response tasks use the fuller
// grammar label.
const (
	nameTaskAchievement = "Khả năng hoàn thành yêu cầu"
	namePronunciation   = "Phát âm"
	nameFluency         = "Độ trôi chảy"
	nameGrammar         = "Độ chính xác ngữ pháp"
	nameGrammarFull     = "Độ đa dạng và chính xác ngữ pháp"
	nameVocabulary      = "Vốn từ vựng"
	nameCoherence       = "Tính mạch lạc và liên kết"
)

// builtinPlans holds the nine HSKK task plans: three per exam level
// (beginner 101, intermediate 102, advanced 103).
func builtinPlans() []TaskPlan {
	return []TaskPlan{
		{
			TaskID:            "HSKKSC1",
			TaskName:          "Nghe và nhắc lại",
			Level:             "101",
			LevelName:         "beginner",
			QuestionCount:     15,
			PointsPerQuestion: 2,
			TotalPoints:       30,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 1.0, DisplayName: nameTaskAchievement, RequiresReference: true},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 0.5, DisplayName: namePronunciation},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 0.5, DisplayName: nameFluency},
			},
		},
		{
			TaskID:            "HSKKSC2",
			TaskName:          "Nghe và trả lời (câu ngắn)",
			Level:             "101",
			LevelName:         "beginner",
			QuestionCount:     10,
			PointsPerQuestion: 3,
			TotalPoints:       30,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 1.5, DisplayName: nameTaskAchievement},
				{Type: Grammar, Source: SourceJudged, MaxScore: 0.5, DisplayName: nameGrammar},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 0.5, DisplayName: namePronunciation},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 0.5, DisplayName: nameFluency},
			},
		},
		{
			TaskID:            "HSKKSC3",
			TaskName:          "Trả lời câu hỏi (đoạn ngắn)",
			Level:             "101",
			LevelName:         "beginner",
			QuestionCount:     2,
			PointsPerQuestion: 20,
			TotalPoints:       40,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 6.0, DisplayName: nameTaskAchievement},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 4.0, DisplayName: namePronunciation},
				{Type: Grammar, Source: SourceJudged, MaxScore: 4.0, DisplayName: nameGrammarFull},
				{Type: Vocabulary, Source: SourceJudged, MaxScore: 2.0, DisplayName: nameVocabulary},
				{Type: Coherence, Source: SourceJudged, MaxScore: 2.0, DisplayName: nameCoherence},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 2.0, DisplayName: nameFluency},
			},
		},
		{
			TaskID:            "HSKKTC1",
			TaskName:          "Nghe và nhắc lại",
			Level:             "102",
			LevelName:         "intermediate",
			QuestionCount:     10,
			PointsPerQuestion: 3,
			TotalPoints:       30,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 1.5, DisplayName: nameTaskAchievement, RequiresReference: true},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 1.0, DisplayName: namePronunciation},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 0.5, DisplayName: nameFluency},
			},
		},
		{
			TaskID:            "HSKKTC2",
			TaskName:          "Mô tả tranh (đoạn văn ngắn)",
			Level:             "102",
			LevelName:         "intermediate",
			QuestionCount:     2,
			PointsPerQuestion: 15,
			TotalPoints:       30,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 5.0, DisplayName: nameTaskAchievement},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 3.0, DisplayName: namePronunciation},
				{Type: Grammar, Source: SourceJudged, MaxScore: 3.0, DisplayName: nameGrammarFull},
				{Type: Vocabulary, Source: SourceJudged, MaxScore: 1.0, DisplayName: nameVocabulary},
				{Type: Coherence, Source: SourceJudged, MaxScore: 1.0, DisplayName: nameCoherence},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 2.0, DisplayName: nameFluency},
			},
		},
		{
			TaskID:            "HSKKTC3",
			TaskName:          "Trả lời câu hỏi (đoạn ngắn)",
			Level:             "102",
			LevelName:         "intermediate",
			QuestionCount:     2,
			PointsPerQuestion: 20,
			TotalPoints:       40,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 6.0, DisplayName: nameTaskAchievement},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 4.0, DisplayName: namePronunciation},
				{Type: Grammar, Source: SourceJudged, MaxScore: 4.0, DisplayName: nameGrammarFull},
				{Type: Vocabulary, Source: SourceJudged, MaxScore: 2.0, DisplayName: nameVocabulary},
				{Type: Coherence, Source: SourceJudged, MaxScore: 2.0, DisplayName: nameCoherence},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 2.0, DisplayName: nameFluency},
			},
		},
		{
			TaskID:            "HSKKCC1",
			TaskName:          "Nghe và nhắc lại",
			Level:             "103",
			LevelName:         "advanced",
			QuestionCount:     3,
			PointsPerQuestion: 10,
			TotalPoints:       30,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 4.0, DisplayName: nameTaskAchievement, RequiresReference: true},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 2.0, DisplayName: namePronunciation},
				{Type: Grammar, Source: SourceJudged, MaxScore: 2.0, DisplayName: nameGrammar},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 2.0, DisplayName: nameFluency},
			},
		},
		{
			TaskID:            "HSKKCC2",
			TaskName:          "Đọc đoạn văn",
			Level:             "103",
			LevelName:         "advanced",
			QuestionCount:     1,
			PointsPerQuestion: 20,
			TotalPoints:       20,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 10.0, DisplayName: nameTaskAchievement, RequiresReference: true},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 5.0, DisplayName: namePronunciation},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 5.0, DisplayName: nameFluency},
			},
		},
		{
			TaskID:            "HSKKCC3",
			TaskName:          "Trả lời câu hỏi (đoạn ngắn)",
			Level:             "103",
			LevelName:         "advanced",
			QuestionCount:     2,
			PointsPerQuestion: 25,
			TotalPoints:       50,
			Criteria: []CriterionSpec{
				{Type: TaskAchievement, Source: SourceJudged, MaxScore: 8.0, DisplayName: nameTaskAchievement},
				{Type: Pronunciation, Source: SourceAcoustic, MaxScore: 5.0, DisplayName: namePronunciation},
				{Type: Grammar, Source: SourceJudged, MaxScore: 4.0, DisplayName: nameGrammarFull},
				{Type: Vocabulary, Source: SourceJudged, MaxScore: 2.0, DisplayName: nameVocabulary},
				{Type: Coherence, Source: SourceJudged, MaxScore: 3.0, DisplayName: nameCoherence},
				{Type: Fluency, Source: SourceAcoustic, MaxScore: 3.0, DisplayName: nameFluency},
			},
		},
	}
}
