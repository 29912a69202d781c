// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hskk-assessor/internal/acoustic"
	"hskk-assessor/internal/api"
	"hskk-assessor/internal/assessment"
	"hskk-assessor/internal/common/config"
	"hskk-assessor/internal/common/database"
	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/criteria"
	"hskk-assessor/internal/judge"
	"hskk-assessor/internal/scorers"
	"hskk-assessor/internal/transcribe"
)

// fixedExtractor stands in for the Praat sidecar.
type fixedExtractor struct{}

func (fixedExtractor) Extract(ctx context.Context, audio []byte, filename string) (*acoustic.Result, error) {
	return &acoustic.Result{
		Features: acoustic.FeatureVector{
			Duration:          20,
			HNRMean:           22,
			JitterLocal:       0.008,
			ShimmerLocal:      0.04,
			SpeechRate:        180,
			ArticulationRate:  195,
			PauseRatio:        0.1,
			NumPauses:         3,
			MeanPauseDuration: 0.3,
		},
		Intervals: []acoustic.Interval{
			{Start: 0, End: 0.4, PitchMean: 210, PitchStd: 18, HNR: 19},
			{Start: 0.4, End: 0.9, PitchMean: 195, PitchStd: 22, HNR: 17},
		},
	}, nil
}

// fixedBackend stands in for a speech-to-text engine.
type fixedBackend struct {
	id    string
	text  string
	words []transcribe.Word
}

func (b fixedBackend) ID() string { return b.id }

func (b fixedBackend) Transcribe(ctx context.Context, audio []byte, filename string) (transcribe.Transcript, error) {
	return transcribe.Transcript{Text: b.text, Words: b.words}, nil
}

// judgeServer answers the chat completion call with a schema valid verdict.
func judgeServer(t *testing.T) *httptest.Server {
	t.Helper()
	verdict := map[string]interface{}{
		"criteria": map[string]interface{}{
			"task_achievement": map[string]interface{}{
				"score":    1.2,
				"feedback": "Trả lời đúng trọng tâm câu hỏi.",
			},
			"grammar": map[string]interface{}{
				"score":    0.4,
				"feedback": "Một vài lỗi nhỏ về trật tự từ.",
			},
		},
		"overall_feedback": "Bài nói khá tốt.",
	}
	content, err := json.Marshal(verdict)
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": string(content)}},
			},
		})
	}))
}

func newRouter(t *testing.T, cache *assessment.Cache, judgeURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)

	registry, err := criteria.NewRegistry()
	require.NoError(t, err)

	backends := []transcribe.TimedBackend{
		{Backend: fixedBackend{id: "whisper", text: "我喜欢喝茶"}, Timeout: 2 * time.Second},
		{Backend: fixedBackend{id: "google", text: "我喜欢喝茶", words: []transcribe.Word{
			{Text: "我", Start: 0, End: 0.3},
			{Text: "喜欢", Start: 0.3, End: 0.8},
		}}, Timeout: 2 * time.Second},
	}
	fanout := transcribe.NewFanout(backends, log)

	dispatcher := judge.NewDispatcher(judge.NewOpenAIClient(config.JudgeConfig{
		BaseURL:    judgeURL,
		APIKey:     "test-key",
		Model:      "gpt-4o",
		Timeout:    2000,
		MaxRetries: 1,
	}), log)

	orchestrator := assessment.NewOrchestrator(
		registry,
		fixedExtractor{},
		fanout,
		dispatcher,
		[]scorers.AcousticScorer{scorers.NewPronunciationScorer(), scorers.NewFluencyScorer()},
		cache,
		log,
	)

	handler := api.NewHandler(orchestrator, []string{"wav", "mp3", "m4a", "flac"}, 32<<20, log)
	return api.NewRouter(handler, 32<<20)
}

func postAssessment(t *testing.T, router *gin.Engine, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio_file", "answer.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-audio-bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAssessmentEndToEnd(t *testing.T) {
	srv := judgeServer(t)
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()
	cache := assessment.NewCache(rdb, time.Minute, logger.NewTestLogger(t))

	router := newRouter(t, cache, srv.URL)

	rec := postAssessment(t, router, map[string]string{
		"task_id":               "HSKKSC2",
		"reference_text":        "我喜欢喝茶",
		"include_word_analysis": "true",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result assessment.AssessmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.True(t, result.Success)
	assert.False(t, result.Partial)
	assert.Equal(t, "HSKKSC2", result.TaskID)
	require.Len(t, result.Scores, 4)

	// Clean delivery keeps both acoustic criteria at full marks, the judge
	// verdict supplies the rest: 0.5 + 0.5 + 1.2 + 0.4 over a 3.0 plan.
	assert.InDelta(t, 2.6, result.TotalScore, 1e-9)
	assert.InDelta(t, 3.0, result.MaxTotalScore, 1e-9)
	assert.InDelta(t, 86.7, result.TotalPercentage, 1e-9)
	assert.Equal(t, "Bài nói khá tốt.", result.OverallFeedback)

	assert.InDelta(t, 0.5, result.Scores["pronunciation"].Score, 1e-9)
	assert.InDelta(t, 0.5, result.Scores["fluency"].Score, 1e-9)
	assert.InDelta(t, 1.2, result.Scores["task_achievement"].Score, 1e-9)
	assert.Equal(t, "Trả lời đúng trọng tâm câu hỏi.", result.Scores["task_achievement"].Feedback)

	require.NotNil(t, result.WordAnalysis)
	assert.Equal(t, 2, result.WordAnalysis.Summary.TotalWords)

	// Same upload again comes from the cache.
	rec = postAssessment(t, router, map[string]string{
		"task_id":               "HSKKSC2",
		"reference_text":        "我喜欢喝茶",
		"include_word_analysis": "true",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var cached assessment.AssessmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	assert.Equal(t, result.AssessmentID, cached.AssessmentID)
}

func TestAssessmentEndToEndJudgeDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	router := newRouter(t, nil, srv.URL)

	rec := postAssessment(t, router, map[string]string{
		"task_id":        "HSKKSC2",
		"reference_text": "我喜欢喝茶",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result assessment.AssessmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.True(t, result.Success)
	assert.True(t, result.Partial)
	require.Len(t, result.Scores, 4)

	// Acoustic criteria survive a judge outage untouched.
	assert.InDelta(t, 0.5, result.Scores["pronunciation"].Score, 1e-9)
	assert.InDelta(t, 0.5, result.Scores["fluency"].Score, 1e-9)
	assert.Equal(t, "error", result.Scores["task_achievement"].Level)
	assert.InDelta(t, 1.0, result.TotalScore, 1e-9)
}

func TestTaskCatalogEndToEnd(t *testing.T) {
	srv := judgeServer(t)
	defer srv.Close()
	router := newRouter(t, nil, srv.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		TaskIDs []string `json:"task_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.TaskIDs, 9)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks/HSKKCC3", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "max_total")
}
