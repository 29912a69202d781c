// Package acoustic wraps the external feature extraction engine and the
// measurement model it produces.
package acoustic

import "math"

// FeatureVector is the full measurement set the extraction engine reports for
// one recording. Field names follow the engine's output keys.
type FeatureVector struct {
	Duration float64 `json:"duration"`

	// Pitch statistics (Hz).
	PitchMean       float64 `json:"pitch_mean"`
	PitchStd        float64 `json:"pitch_std"`
	PitchRange      float64 `json:"pitch_range"`
	PitchMin        float64 `json:"pitch_min"`
	PitchMax        float64 `json:"pitch_max"`
	PitchMedian     float64 `json:"pitch_median"`
	PitchQuantile25 float64 `json:"pitch_quantile_25"`
	PitchQuantile75 float64 `json:"pitch_quantile_75"`

	// Formants (Hz).
	F1Mean float64 `json:"f1_mean"`
	F1Std  float64 `json:"f1_std"`
	F2Mean float64 `json:"f2_mean"`
	F2Std  float64 `json:"f2_std"`
	F3Mean float64 `json:"f3_mean"`
	F3Std  float64 `json:"f3_std"`
	F4Mean float64 `json:"f4_mean"`
	F4Std  float64 `json:"f4_std"`

	// Intensity (dB).
	IntensityMean float64 `json:"intensity_mean"`
	IntensityStd  float64 `json:"intensity_std"`
	IntensityMin  float64 `json:"intensity_min"`
	IntensityMax  float64 `json:"intensity_max"`

	// Spectral shape.
	SpectralCentroid float64 `json:"spectral_centroid"`
	SpectralStd      float64 `json:"spectral_std"`
	SpectralSkewness float64 `json:"spectral_skewness"`
	SpectralKurtosis float64 `json:"spectral_kurtosis"`

	// Voice quality.
	HNRMean      float64 `json:"hnr_mean"`
	HNRStd       float64 `json:"hnr_std"`
	JitterLocal  float64 `json:"jitter_local"`
	JitterRap    float64 `json:"jitter_rap"`
	JitterPpq5   float64 `json:"jitter_ppq5"`
	ShimmerLocal float64 `json:"shimmer_local"`
	ShimmerApq3  float64 `json:"shimmer_apq3"`
	ShimmerApq5  float64 `json:"shimmer_apq5"`
	ShimmerApq11 float64 `json:"shimmer_apq11"`

	// Timing.
	SpeechRate        float64 `json:"speech_rate"`       // syllables per minute
	ArticulationRate  float64 `json:"articulation_rate"` // excludes pauses
	SpeechDuration    float64 `json:"speech_duration"`
	PauseDuration     float64 `json:"pause_duration"`
	PauseRatio        float64 `json:"pause_ratio"`
	NumPauses         int     `json:"num_pauses"`
	MeanPauseDuration float64 `json:"mean_pause_duration"`

	// Spectral balance.
	Cog    float64 `json:"cog"`
	Slope  float64 `json:"slope"`
	Spread float64 `json:"spread"`
}

// Interval is one voiced segment with its local pitch and voicing stats, used
// for word level alignment.
type Interval struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	PitchMean float64 `json:"pitch_mean"`
	PitchStd  float64 `json:"pitch_std"`
	HNR       float64 `json:"hnr"`
}

// FromRaw coerces the engine's raw key value output into a FeatureVector.
// Missing or non-finite voice quality values default to worst case (jitter
// and shimmer 1.0, pause ratio 1.0) so an engine dropout reads as a defect,
// not a perfect voice. Everything else defaults to zero. Durations, counts
// and ratios are clamped into their valid ranges.
func FromRaw(raw map[string]float64) FeatureVector {
	get := func(key string, def float64) float64 {
		v, ok := raw[key]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return v
	}
	nonNeg := func(key string) float64 {
		return math.Max(0, get(key, 0))
	}

	fv := FeatureVector{
		Duration: nonNeg("duration"),

		PitchMean:       nonNeg("pitch_mean"),
		PitchStd:        nonNeg("pitch_std"),
		PitchRange:      nonNeg("pitch_range"),
		PitchMin:        nonNeg("pitch_min"),
		PitchMax:        nonNeg("pitch_max"),
		PitchMedian:     nonNeg("pitch_median"),
		PitchQuantile25: nonNeg("pitch_quantile_25"),
		PitchQuantile75: nonNeg("pitch_quantile_75"),

		F1Mean: nonNeg("f1_mean"),
		F1Std:  nonNeg("f1_std"),
		F2Mean: nonNeg("f2_mean"),
		F2Std:  nonNeg("f2_std"),
		F3Mean: nonNeg("f3_mean"),
		F3Std:  nonNeg("f3_std"),
		F4Mean: nonNeg("f4_mean"),
		F4Std:  nonNeg("f4_std"),

		IntensityMean: get("intensity_mean", 0),
		IntensityStd:  nonNeg("intensity_std"),
		IntensityMin:  get("intensity_min", 0),
		IntensityMax:  get("intensity_max", 0),

		SpectralCentroid: nonNeg("spectral_centroid"),
		SpectralStd:      nonNeg("spectral_std"),
		SpectralSkewness: get("spectral_skewness", 0),
		SpectralKurtosis: get("spectral_kurtosis", 0),

		HNRMean:      get("hnr_mean", 0),
		HNRStd:       nonNeg("hnr_std"),
		JitterLocal:  math.Max(0, get("jitter_local", 1.0)),
		JitterRap:    nonNeg("jitter_rap"),
		JitterPpq5:   nonNeg("jitter_ppq5"),
		ShimmerLocal: math.Max(0, get("shimmer_local", 1.0)),
		ShimmerApq3:  nonNeg("shimmer_apq3"),
		ShimmerApq5:  nonNeg("shimmer_apq5"),
		ShimmerApq11: nonNeg("shimmer_apq11"),

		SpeechRate:        nonNeg("speech_rate"),
		ArticulationRate:  nonNeg("articulation_rate"),
		SpeechDuration:    nonNeg("speech_duration"),
		PauseDuration:     nonNeg("pause_duration"),
		PauseRatio:        clamp01(get("pause_ratio", 1.0)),
		NumPauses:         int(nonNeg("num_pauses")),
		MeanPauseDuration: nonNeg("mean_pause_duration"),

		Cog:    nonNeg("cog"),
		Slope:  get("slope", 0),
		Spread: nonNeg("spread"),
	}
	return fv
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
