package quality

import (
	"fmt"
	"math"

	"github.com/mkralik/photo-insight/internal/signal"
)

// issues generates purpose-specific diagnostics. Each purpose carries its
// own sharpness, exposure and resolution thresholds in the policy table.
func (e *Engine) issues(m signal.QualityMetrics, purpose signal.ImagePurpose) []signal.QualityIssue {
	thresholds := e.table.ThresholdsFor(string(purpose))
	neutral := e.table.Quality().NeutralExposure

	var issues []signal.QualityIssue

	if m.Sharpness < thresholds.MinSharpness {
		issues = append(issues, signal.QualityIssue{
			Kind:   signal.IssueSoftFocus,
			Title:  "Soft focus",
			Detail: softFocusDetail(purpose, m.Sharpness),
		})
	}

	stops := math.Abs(m.Exposure-neutral) * 2
	if m.Exposure < thresholds.ExposureLow {
		issues = append(issues, signal.QualityIssue{
			Kind:   signal.IssueUnderexposed,
			Title:  "Underexposed",
			Detail: fmt.Sprintf("The image is about %.1f stops darker than optimal.", stops),
		})
	} else if m.Exposure > thresholds.ExposureHigh {
		issues = append(issues, signal.QualityIssue{
			Kind:   signal.IssueOverexposed,
			Title:  "Overexposed",
			Detail: fmt.Sprintf("The image is about %.1f stops brighter than optimal.", stops),
		})
	}

	if m.Megapixels < thresholds.MinMegapixels {
		issues = append(issues, signal.QualityIssue{
			Kind:  signal.IssueLowResolution,
			Title: "Low resolution",
			Detail: fmt.Sprintf("%.1f megapixels is below the %.0f recommended for %s shots.",
				m.Megapixels, thresholds.MinMegapixels, purposeNoun(purpose)),
		})
	}

	return issues
}

func softFocusDetail(purpose signal.ImagePurpose, sharpness float64) string {
	switch purpose {
	case signal.PurposePortrait, signal.PurposeGroupPhoto:
		return fmt.Sprintf("Faces look soft (sharpness %.2f); check focus on the eyes.", sharpness)
	case signal.PurposeDocument, signal.PurposeScreenshot:
		return fmt.Sprintf("Text may be hard to read (sharpness %.2f).", sharpness)
	default:
		return fmt.Sprintf("The main subject looks soft (sharpness %.2f).", sharpness)
	}
}

func purposeNoun(purpose signal.ImagePurpose) string {
	switch purpose {
	case signal.PurposePortrait:
		return "portrait"
	case signal.PurposeGroupPhoto:
		return "group"
	case signal.PurposeFood:
		return "food"
	case signal.PurposeProductPhoto:
		return "product"
	case signal.PurposeDocument:
		return "document"
	case signal.PurposeScreenshot:
		return "screenshot"
	case signal.PurposeLandscape:
		return "landscape"
	case signal.PurposeArchitecture:
		return "architecture"
	case signal.PurposeWildlife:
		return "wildlife"
	default:
		return "general"
	}
}
