// Package quality computes purpose-aware image quality assessments:
// sharpness and exposure metrics, an overall tier, and human-readable
// diagnostics with a narrative summary.
package quality

import (
	"image"
	"math"

	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

// Engine assesses image quality against the policy table. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	table *vocab.Table
}

// New creates a quality engine backed by the given policy table.
func New(table *vocab.Table) *Engine {
	return &Engine{table: table}
}

// Assess measures the image and produces a purpose-aware assessment.
// A nil image means pixel data could not be read; the engine returns the
// documented neutral assessment instead of failing the analysis.
func (e *Engine) Assess(img image.Image, purpose signal.ImagePurpose) signal.QualityAssessment {
	policy := e.table.Quality()
	if img == nil {
		return signal.QualityAssessment{
			Quality: signal.TierUnknown,
			Summary: unknownSummary,
			Metrics: signal.QualityMetrics{
				Exposure:  policy.NeutralExposure,
				Luminance: policy.NeutralExposure,
			},
			Purpose: purpose,
		}
	}

	metrics := computeMetrics(img, policy)
	bounds := img.Bounds()
	minDim := min(bounds.Dx(), bounds.Dy())

	score := e.OverallScore(metrics, minDim, purpose)
	tier := e.TierFor(score)
	issues := e.issues(metrics, purpose)

	return signal.QualityAssessment{
		Quality: tier,
		Summary: summarize(purpose, tier, issues),
		Issues:  issues,
		Metrics: metrics,
		Purpose: purpose,
	}
}

// OverallScore combines the resolution tier, sharpness and an exposure
// falloff term into a weighted 0-1 score using the purpose's weight triple.
func (e *Engine) OverallScore(m signal.QualityMetrics, minDimension int, purpose signal.ImagePurpose) float64 {
	policy := e.table.Quality()
	weights := e.table.WeightsFor(string(purpose))

	resolution := resolutionTerm(policy, m.Megapixels, minDimension)
	exposure := ExposureQuality(m.Exposure, policy.NeutralExposure, policy.ExposureTolerance)

	score := resolution*weights.Resolution +
		m.Sharpness*weights.Sharpness +
		exposure*weights.Exposure
	return clamp01(score)
}

// ExposureQuality maps exposure deviation from optimal to 0-1 with a
// gaussian-like falloff: zero once the deviation exceeds the tolerance.
func ExposureQuality(exposure, neutral, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0
	}
	ratio := math.Abs(exposure-neutral) / tolerance
	return math.Max(0, 1-ratio*ratio)
}

// TierFor buckets an overall score. Boundaries are inclusive: a score of
// exactly the high threshold is high, not medium.
func (e *Engine) TierFor(score float64) signal.QualityTier {
	policy := e.table.Quality()
	switch {
	case score >= policy.TierHigh:
		return signal.TierHigh
	case score >= policy.TierMedium:
		return signal.TierMedium
	default:
		return signal.TierLow
	}
}

// resolutionTerm returns the tiered resolution contribution: full weight at
// the high thresholds, two thirds at medium, one third at low, else zero.
// Both megapixels and the smaller dimension must clear a tier.
func resolutionTerm(policy vocab.QualityPolicy, megapixels float64, minDimension int) float64 {
	meets := func(tier vocab.ResolutionTier) bool {
		return megapixels >= tier.Megapixels && minDimension >= tier.MinDimension
	}
	switch {
	case meets(policy.ResolutionTiers["high"]):
		return 1
	case meets(policy.ResolutionTiers["medium"]):
		return 2.0 / 3.0
	case meets(policy.ResolutionTiers["low"]):
		return 1.0 / 3.0
	default:
		return 0
	}
}
