// internal/acoustic/extractor.go
package acoustic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"hskk-assessor/internal/common/config"
	apperrors "hskk-assessor/internal/common/errors"
	"hskk-assessor/internal/common/logger"
)

// Result is the extraction output for one recording.
type Result struct {
	Features  FeatureVector `json:"features"`
	Intervals []Interval    `json:"intervals"`
}

// Extractor produces acoustic measurements for a recording.
type Extractor interface {
	Extract(ctx context.Context, audio []byte, filename string) (*Result, error)
}

// engineOutput mirrors the JSON the extraction script prints on stdout.
type engineOutput struct {
	Features  map[string]float64 `json:"features"`
	Intervals []Interval         `json:"intervals"`
}

// PraatExtractor shells out to a Praat engine running in a sidecar container.
// The work directory is a volume shared with the container, so a path written
// here is readable at the same path inside.
type PraatExtractor struct {
	cfg config.PraatConfig
	log logger.Logger
}

func NewPraatExtractor(cfg config.PraatConfig, log logger.Logger) *PraatExtractor {
	return &PraatExtractor{cfg: cfg, log: log}
}

func (p *PraatExtractor) Extract(ctx context.Context, audio []byte, filename string) (*Result, error) {
	timeout := config.GetDuration(p.cfg.Timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".wav"
	}
	audioPath := filepath.Join(p.cfg.WorkDir, uuid.NewString()+ext)
	if err := os.WriteFile(audioPath, audio, 0o600); err != nil {
		return nil, apperrors.NewExtractionFailedError(fmt.Errorf("failed to stage audio file: %w", err))
	}
	defer os.Remove(audioPath)

	start := time.Now()
	cmd := exec.CommandContext(ctx, "docker", "exec", p.cfg.Container,
		"praat", "--run", p.cfg.ScriptPath, audioPath)
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.log.Warn("acoustic extraction timed out", map[string]interface{}{
				"timeout": timeout.String(),
			})
			return nil, apperrors.NewExtractionTimeoutError(timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("engine exited with %d: %s", exitErr.ExitCode(), string(exitErr.Stderr))
		}
		return nil, apperrors.NewExtractionFailedError(err)
	}

	var out engineOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, apperrors.NewExtractionFailedError(fmt.Errorf("malformed engine output: %w", err))
	}

	p.log.Info("acoustic extraction completed", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"intervals":   len(out.Intervals),
	})

	return &Result{
		Features:  FromRaw(out.Features),
		Intervals: out.Intervals,
	}, nil
}
