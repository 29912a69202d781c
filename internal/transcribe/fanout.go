// internal/transcribe/fanout.go
package transcribe

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/sync/errgroup"

	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/common/metrics"
)

// FanoutResult carries every backend's variant plus the pairwise divergence
// of the successful ones.
type FanoutResult struct {
	Variants []Variant `json:"variants"`
	// Divergence is the mean pairwise character error rate across OK
	// variants, 0 when fewer than two succeeded.
	Divergence float64 `json:"divergence"`
}

// OKCount returns how many backends produced a usable transcript.
func (r FanoutResult) OKCount() int {
	n := 0
	for _, v := range r.Variants {
		if v.OK {
			n++
		}
	}
	return n
}

// TimedBackend pairs a backend with the timeout its calls run under. A zero
// timeout means the request context alone bounds the call.
type TimedBackend struct {
	Backend Backend
	Timeout time.Duration
}

// Fanout dispatches one recording to all backends concurrently.
type Fanout struct {
	backends []TimedBackend
	log      logger.Logger
}

func NewFanout(backends []TimedBackend, log logger.Logger) *Fanout {
	return &Fanout{backends: backends, log: log}
}

// TranscribeAll runs every backend and always returns exactly one variant per
// backend, in registration order. A backend failure never cancels its
// siblings; the goroutines collect outcomes and return nil.
func (f *Fanout) TranscribeAll(ctx context.Context, audio []byte, filename string) FanoutResult {
	variants := make([]Variant, len(f.backends))

	g, gctx := errgroup.WithContext(ctx)
	for i, tb := range f.backends {
		i, backend, timeout := i, tb.Backend, tb.Timeout
		g.Go(func() error {
			bctx := gctx
			if timeout > 0 {
				var cancel context.CancelFunc
				bctx, cancel = context.WithTimeout(gctx, timeout)
				defer cancel()
			}

			start := time.Now()
			transcript, err := backend.Transcribe(bctx, audio, filename)
			if err != nil {
				metrics.TranscriptionFailures.WithLabelValues(backend.ID()).Inc()
				f.log.Warn("transcription backend failed", map[string]interface{}{
					"backend":     backend.ID(),
					"error":       err.Error(),
					"duration_ms": time.Since(start).Milliseconds(),
				})
				variants[i] = Variant{
					BackendID: backend.ID(),
					OK:        false,
					Text:      fmt.Sprintf("[%s error: %v]", backend.ID(), err),
				}
				return nil
			}

			variants[i] = Variant{
				BackendID: backend.ID(),
				OK:        true,
				Text:      transcript.Text,
				Words:     transcript.Words,
			}
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	return FanoutResult{
		Variants:   variants,
		Divergence: meanPairwiseCER(variants),
	}
}

// meanPairwiseCER averages the symmetric character error rate over all pairs
// of successful variants.
func meanPairwiseCER(variants []Variant) float64 {
	var texts []string
	for _, v := range variants {
		if v.OK {
			texts = append(texts, v.Text)
		}
	}
	if len(texts) < 2 {
		return 0
	}

	var sum float64
	var pairs int
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			sum += characterErrorRate(texts[i], texts[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

// characterErrorRate is the rune-level edit distance normalized by the longer
// string, symmetric in its arguments and bounded to [0, 1].
func characterErrorRate(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longer := math.Max(float64(len(ra)), float64(len(rb)))
	if longer == 0 {
		return 0
	}
	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	return math.Min(1, float64(distance)/longer)
}
