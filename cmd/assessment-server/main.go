// cmd/assessment-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hskk-assessor/internal/acoustic"
	"hskk-assessor/internal/api"
	"hskk-assessor/internal/assessment"
	"hskk-assessor/internal/common/config"
	"hskk-assessor/internal/common/database"
	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/common/observability"
	"hskk-assessor/internal/criteria"
	"hskk-assessor/internal/judge"
	"hskk-assessor/internal/scorers"
	"hskk-assessor/internal/transcribe"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// observedAssessor layers OTel counters over the orchestrator.
type observedAssessor struct {
	*assessment.Orchestrator
	obs *observability.Observability
}

func (a *observedAssessor) Assess(ctx context.Context, req assessment.Request) (*assessment.AssessmentResult, error) {
	start := time.Now()
	result, err := a.Orchestrator.Assess(ctx, req)

	status := "success"
	switch {
	case err != nil:
		status = "failed"
	case result != nil && result.Partial:
		status = "partial"
	}
	a.obs.RecordAssessmentProcessed(ctx, req.TaskID, status)
	a.obs.RecordAssessmentDuration(ctx, time.Since(start), status)

	return result, err
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting assessment server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	registry, err := criteria.NewRegistry()
	if err != nil {
		zapLog.Fatal("criteria registry failed", zap.Error(err))
	}
	zapLog.Info("criteria registry loaded", zap.Strings("task_ids", registry.TaskIDs()))

	extractor := acoustic.NewPraatExtractor(cfg.Praat, log)

	// --- Transcription backends, each under its own configured timeout ---
	var backends []transcribe.TimedBackend
	if cfg.STT.Whisper.Enabled {
		backends = append(backends, transcribe.TimedBackend{
			Backend: transcribe.NewWhisperBackend(cfg.STT.Whisper),
			Timeout: config.GetDuration(cfg.STT.Whisper.Timeout),
		})
	}
	if cfg.STT.Google.Enabled {
		googleBackend, err := transcribe.NewGoogleBackend(ctx, cfg.STT.Google)
		if err != nil {
			zapLog.Fatal("google speech client failed", zap.Error(err))
		}
		defer googleBackend.Close()
		backends = append(backends, transcribe.TimedBackend{
			Backend: googleBackend,
			Timeout: config.GetDuration(cfg.STT.Google.Timeout),
		})
	}
	if cfg.STT.Gemini.Enabled {
		backends = append(backends, transcribe.TimedBackend{
			Backend: transcribe.NewGeminiBackend(cfg.STT.Gemini),
			Timeout: config.GetDuration(cfg.STT.Gemini.Timeout),
		})
	}
	zapLog.Info("transcription backends enabled", zap.Int("count", len(backends)))

	fanout := transcribe.NewFanout(backends, log)
	dispatcher := judge.NewDispatcher(judge.NewOpenAIClient(cfg.Judge), log)

	// --- Init Redis cache with retry ---
	var cache *assessment.Cache
	if cfg.Cache.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Cache.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		cache = assessment.NewCache(rdb, time.Duration(cfg.Cache.TTLSeconds)*time.Second, log)
	}

	orchestrator := assessment.NewOrchestrator(
		registry,
		extractor,
		fanout,
		dispatcher,
		[]scorers.AcousticScorer{scorers.NewPronunciationScorer(), scorers.NewFluencyScorer()},
		cache,
		log,
	)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(&observedAssessor{Orchestrator: orchestrator, obs: obs}, cfg.Audio.SupportedFormats, cfg.Server.MaxUploadBytes, log)
	router := api.NewRouter(handler, cfg.Server.MaxUploadBytes)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Separate metrics endpoint so scrapes never compete with uploads.
	metricsSrv := &http.Server{
		Addr:    cfg.Server.MetricsAddress,
		Handler: promhttp.Handler(),
	}
	go func() {
		zapLog.Info("metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("metrics server shutdown failed", zap.Error(err))
	}

	zapLog.Info("assessment server stopped")
}
