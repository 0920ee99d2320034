package quality

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(vocab.MustLoad())
}

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func checkerboard(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func TestAssessDarkUniformImage(t *testing.T) {
	e := newEngine(t)

	img := uniformImage(100, 100, color.RGBA{13, 13, 13, 255})
	assessment := e.Assess(img, signal.PurposeGeneral)

	if math.Abs(assessment.Metrics.Exposure-13.0/255.0) > 0.01 {
		t.Errorf("exposure = %v, want ~%v", assessment.Metrics.Exposure, 13.0/255.0)
	}
	if assessment.Metrics.Sharpness != 0 {
		t.Errorf("uniform image sharpness = %v, want 0", assessment.Metrics.Sharpness)
	}

	var underexposed bool
	for _, issue := range assessment.Issues {
		if issue.Kind == signal.IssueUnderexposed {
			underexposed = true
			if !strings.Contains(issue.Detail, "stops darker") {
				t.Errorf("underexposed detail = %q, want stop estimate", issue.Detail)
			}
		}
	}
	if !underexposed {
		t.Error("expected an underexposed issue for a near-black image")
	}
	if assessment.Quality != signal.TierLow {
		t.Errorf("tier = %v, want low", assessment.Quality)
	}
}

func TestAssessCheckerboardIsMaximallySharp(t *testing.T) {
	e := newEngine(t)

	assessment := e.Assess(checkerboard(64, 64), signal.PurposeGeneral)
	if math.Abs(assessment.Metrics.Sharpness-1.0) > 1e-9 {
		t.Errorf("checkerboard sharpness = %v, want 1", assessment.Metrics.Sharpness)
	}
}

func TestAssessDegenerateImage(t *testing.T) {
	e := newEngine(t)

	// Too small for the bordered Laplacian grid; must not panic and must
	// stay within metric bounds.
	assessment := e.Assess(uniformImage(1, 1, color.RGBA{128, 128, 128, 255}), signal.PurposeGeneral)

	m := assessment.Metrics
	if m.Sharpness != 0 {
		t.Errorf("1x1 sharpness = %v, want 0", m.Sharpness)
	}
	if m.Exposure < 0 || m.Exposure > 1 {
		t.Errorf("1x1 exposure = %v, outside [0,1]", m.Exposure)
	}
	if math.Abs(m.Exposure-128.0/255.0) > 0.01 {
		t.Errorf("1x1 exposure = %v, want ~0.5 (single gray pixel)", m.Exposure)
	}
}

func TestAssessNilImage(t *testing.T) {
	e := newEngine(t)

	assessment := e.Assess(nil, signal.PurposePortrait)
	if assessment.Quality != signal.TierUnknown {
		t.Errorf("tier = %v, want unknown", assessment.Quality)
	}
	if math.Abs(assessment.Metrics.Exposure-0.5) > 1e-9 {
		t.Errorf("neutral exposure = %v, want 0.5", assessment.Metrics.Exposure)
	}
	if len(assessment.Issues) != 0 {
		t.Errorf("nil image should carry no issues, got %v", assessment.Issues)
	}
	if assessment.Summary == "" {
		t.Error("expected a summary for the unknown assessment")
	}
	if assessment.Purpose != signal.PurposePortrait {
		t.Errorf("purpose = %v, want portrait", assessment.Purpose)
	}
}

func TestTierBoundariesInclusive(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		score    float64
		expected signal.QualityTier
	}{
		{1.0, signal.TierHigh},
		{0.75, signal.TierHigh}, // boundary belongs to the upper tier
		{0.749, signal.TierMedium},
		{0.45, signal.TierMedium},
		{0.449, signal.TierLow},
		{0.0, signal.TierLow},
	}

	for _, tt := range tests {
		if got := e.TierFor(tt.score); got != tt.expected {
			t.Errorf("TierFor(%v) = %v, want %v", tt.score, got, tt.expected)
		}
	}
}

func TestExposureQuality(t *testing.T) {
	tests := []struct {
		exposure float64
		expected float64
	}{
		{0.5, 1.0},    // optimal
		{0.675, 0.75}, // half the tolerance away
		{0.05, 0.0},   // beyond tolerance
		{0.95, 0.0},
	}

	for _, tt := range tests {
		got := ExposureQuality(tt.exposure, 0.5, 0.35)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("ExposureQuality(%v) = %v, want %v", tt.exposure, got, tt.expected)
		}
	}

	if got := ExposureQuality(0.5, 0.5, 0); got != 0 {
		t.Errorf("zero tolerance should yield 0, got %v", got)
	}
}

func TestOverallScorePerfectMetrics(t *testing.T) {
	e := newEngine(t)

	m := signal.QualityMetrics{
		Megapixels: 20,
		Sharpness:  1,
		Exposure:   0.5,
	}
	score := e.OverallScore(m, 4000, signal.PurposeGeneral)
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("perfect metrics score = %v, want 1", score)
	}
	if e.TierFor(score) != signal.TierHigh {
		t.Errorf("perfect metrics should tier high")
	}
}

func TestAssessSummaryMentionsIssues(t *testing.T) {
	e := newEngine(t)

	// Mid-gray uniform: exposure fine, sharpness zero.
	assessment := e.Assess(uniformImage(100, 100, color.RGBA{128, 128, 128, 255}), signal.PurposePortrait)

	var soft bool
	for _, issue := range assessment.Issues {
		if issue.Kind == signal.IssueSoftFocus {
			soft = true
		}
	}
	if !soft {
		t.Fatal("expected a soft focus issue for a flat image")
	}
	if !strings.Contains(strings.ToLower(assessment.Summary), "soft focus") {
		t.Errorf("summary %q should mention soft focus", assessment.Summary)
	}
}
