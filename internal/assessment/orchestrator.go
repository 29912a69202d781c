// internal/assessment/orchestrator.go
package assessment

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hskk-assessor/internal/acoustic"
	apperrors "hskk-assessor/internal/common/errors"
	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/common/metrics"
	"hskk-assessor/internal/criteria"
	"hskk-assessor/internal/judge"
	"hskk-assessor/internal/scorers"
	"hskk-assessor/internal/transcribe"
	"hskk-assessor/internal/wordalign"
)

// Transcriber is the fanout surface the orchestrator needs.
type Transcriber interface {
	TranscribeAll(ctx context.Context, audio []byte, filename string) transcribe.FanoutResult
}

// Dispatcher is the judge surface the orchestrator needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, p judge.Payload) judge.DispatchResult
}

// Orchestrator wires the pipeline stages together. All collaborators arrive
// through the constructor.
type Orchestrator struct {
	registry   *criteria.Registry
	extractor  acoustic.Extractor
	fanout     Transcriber
	dispatcher Dispatcher
	scorerFor  map[criteria.CriterionType]scorers.AcousticScorer
	cache      *Cache // nil disables caching
	log        logger.Logger
}

func NewOrchestrator(
	registry *criteria.Registry,
	extractor acoustic.Extractor,
	fanout Transcriber,
	dispatcher Dispatcher,
	acousticScorers []scorers.AcousticScorer,
	cache *Cache,
	log logger.Logger,
) *Orchestrator {
	scorerFor := make(map[criteria.CriterionType]scorers.AcousticScorer, len(acousticScorers))
	for _, s := range acousticScorers {
		scorerFor[s.Type()] = s
	}
	return &Orchestrator{
		registry:   registry,
		extractor:  extractor,
		fanout:     fanout,
		dispatcher: dispatcher,
		scorerFor:  scorerFor,
		cache:      cache,
		log:        log,
	}
}

// Assess runs the full pipeline. Request level failures (unknown task,
// failed extraction for a plan that needs it) return a failed result plus the
// error; stage degradation (backend dropouts, judge failure) returns a
// successful partial result.
func (o *Orchestrator) Assess(ctx context.Context, req Request) (*AssessmentResult, error) {
	start := time.Now()
	log := o.log.WithFields(map[string]interface{}{"task_id": req.TaskID})

	plan, err := o.registry.Resolve(req.TaskID)
	if err != nil {
		metrics.AssessmentsTotal.WithLabelValues(req.TaskID, "rejected").Inc()
		return failedResult(req.TaskID, start, err), err
	}

	var cacheKey string
	if o.cache != nil {
		cacheKey = o.cache.Key(req.Audio, req.TaskID, req.ReferenceText)
		if cached := o.cache.Get(ctx, cacheKey); cached != nil {
			log.Info("returning cached assessment", map[string]interface{}{
				"assessment_id": cached.AssessmentID,
			})
			return cached, nil
		}
	}

	// Extraction and fanout are independent; run both and collect outcomes.
	// Goroutines always return nil so one stage failing never cancels the
	// other.
	var (
		extraction    *acoustic.Result
		extractionErr error
		fanoutRes     transcribe.FanoutResult
	)
	g, gctx := errgroup.WithContext(ctx)
	if plan.HasAcoustic() {
		g.Go(func() error {
			stageStart := time.Now()
			extraction, extractionErr = o.extractor.Extract(gctx, req.Audio, req.Filename)
			metrics.StageDuration.WithLabelValues("extraction").Observe(time.Since(stageStart).Seconds())
			return nil
		})
	}
	g.Go(func() error {
		stageStart := time.Now()
		fanoutRes = o.fanout.TranscribeAll(gctx, req.Audio, req.Filename)
		metrics.StageDuration.WithLabelValues("transcription").Observe(time.Since(stageStart).Seconds())
		return nil
	})
	_ = g.Wait()

	if plan.HasAcoustic() && extractionErr != nil {
		log.WithError(extractionErr).Error("acoustic extraction failed, aborting assessment", nil)
		metrics.AssessmentsTotal.WithLabelValues(req.TaskID, "failed").Inc()
		return failedResult(req.TaskID, start, extractionErr), extractionErr
	}

	// Deterministic scoring.
	preScores := make(map[criteria.CriterionType]scorers.Result)
	for _, spec := range plan.AcousticCriteria() {
		scorer, ok := o.scorerFor[spec.Type]
		if !ok {
			// Registry validation guarantees a scorer per acoustic type.
			continue
		}
		preScores[spec.Type] = scorer.Score(extraction.Features, spec.MaxScore)
	}

	payload := judge.Payload{
		TaskID:           plan.TaskID,
		TaskName:         plan.TaskName,
		Variants:         fanoutRes.Variants,
		Divergence:       fanoutRes.Divergence,
		ReferenceText:    req.ReferenceText,
		ReferenceMissing: plan.RequiresReference() && req.ReferenceText == "",
		PreScores:        preScores,
		JudgedCriteria:   plan.JudgedCriteria(),
	}

	// Judgment and word alignment only share inputs, so they run together.
	var (
		dispatch     judge.DispatchResult
		wordAnalysis *wordalign.Analysis
	)
	g2, g2ctx := errgroup.WithContext(ctx)
	g2.Go(func() error {
		stageStart := time.Now()
		dispatch = o.dispatcher.Dispatch(g2ctx, payload)
		metrics.StageDuration.WithLabelValues("judgment").Observe(time.Since(stageStart).Seconds())
		return nil
	})
	if req.IncludeWordAnalysis && extraction != nil {
		if words := timestampedWords(fanoutRes.Variants); len(words) > 0 {
			g2.Go(func() error {
				wordAnalysis = wordalign.Align(words, extraction.Intervals)
				return nil
			})
		}
	}
	_ = g2.Wait()

	result := o.aggregate(plan, dispatch, start)
	result.WordAnalysis = wordAnalysis

	status := "success"
	if result.Partial {
		status = "partial"
	}
	metrics.AssessmentsTotal.WithLabelValues(req.TaskID, status).Inc()
	metrics.AssessmentDuration.WithLabelValues(req.TaskID).Observe(time.Since(start).Seconds())

	log.Info("assessment completed", map[string]interface{}{
		"assessment_id":    result.AssessmentID,
		"total_score":      result.TotalScore,
		"total_percentage": result.TotalPercentage,
		"partial":          result.Partial,
		"ok_backends":      fanoutRes.OKCount(),
	})

	if o.cache != nil && !result.Partial {
		o.cache.Set(ctx, cacheKey, result)
	}
	return result, nil
}

// DescribeTask exposes the registry for the API surface.
func (o *Orchestrator) DescribeTask(taskID string) (criteria.TaskPlan, float64, error) {
	return o.registry.Describe(taskID)
}

// TaskIDs lists the registered tasks.
func (o *Orchestrator) TaskIDs() []string {
	return o.registry.TaskIDs()
}

func (o *Orchestrator) aggregate(plan criteria.TaskPlan, dispatch judge.DispatchResult, start time.Time) *AssessmentResult {
	result := &AssessmentResult{
		AssessmentID:    uuid.NewString(),
		Success:         true,
		Partial:         dispatch.Degraded,
		TaskID:          plan.TaskID,
		Scores:          make(map[string]CriterionResult, len(plan.Criteria)),
		OverallFeedback: dispatch.OverallFeedback,
	}

	var total, maxTotal float64
	for _, spec := range plan.Criteria {
		maxTotal += spec.MaxScore
		r, ok := dispatch.Results[spec.Type]
		if !ok {
			continue
		}
		if clamped, wasClamped := clampToMax(r.Score, spec.MaxScore); wasClamped {
			metrics.ScoresClamped.WithLabelValues(string(spec.Type)).Inc()
			o.log.Warn("computed score out of range, clamping", map[string]interface{}{
				"criterion": string(spec.Type),
				"score":     r.Score,
				"max_score": spec.MaxScore,
			})
			r.Score = clamped
		}
		total += r.Score
		result.Scores[string(spec.Type)] = toCriterionResult(r)
	}

	result.TotalScore = round2(total)
	result.MaxTotalScore = maxTotal
	if maxTotal > 0 {
		result.TotalPercentage = round1(total / maxTotal * 100)
	}
	result.ProcessingTime = processingSeconds(start)
	return result
}

// timestampedWords picks the first variant that carries word offsets.
func timestampedWords(variants []transcribe.Variant) []transcribe.Word {
	for _, v := range variants {
		if v.OK && len(v.Words) > 0 {
			return v.Words
		}
	}
	return nil
}

func failedResult(taskID string, start time.Time, err error) *AssessmentResult {
	return &AssessmentResult{
		AssessmentID:   uuid.NewString(),
		Success:        false,
		TaskID:         taskID,
		Scores:         map[string]CriterionResult{},
		ProcessingTime: processingSeconds(start),
		ErrorMessage:   apperrors.Normalize(err).Message,
	}
}

func clampToMax(score, max float64) (float64, bool) {
	if score < 0 {
		return 0, true
	}
	if score > max {
		return max, true
	}
	return score, false
}

func processingSeconds(start time.Time) float64 {
	return round2(time.Since(start).Seconds())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
