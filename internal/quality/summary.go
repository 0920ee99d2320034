package quality

import (
	"strings"

	"github.com/mkralik/photo-insight/internal/signal"
)

const unknownSummary = "Quality could not be determined because the pixel data was unavailable."

// summaryTemplates maps purpose and tier to a lead sentence. Purposes
// without an entry fall back to the general templates.
var summaryTemplates = map[signal.ImagePurpose]map[signal.QualityTier]string{
	signal.PurposePortrait: {
		signal.TierHigh:   "A crisp, well-exposed portrait.",
		signal.TierMedium: "A decent portrait with room for improvement.",
		signal.TierLow:    "This portrait has noticeable quality problems.",
	},
	signal.PurposeGroupPhoto: {
		signal.TierHigh:   "A sharp, well-lit group photo.",
		signal.TierMedium: "A usable group photo with minor flaws.",
		signal.TierLow:    "This group photo has noticeable quality problems.",
	},
	signal.PurposeFood: {
		signal.TierHigh:   "An appetizing, well-shot food photo.",
		signal.TierMedium: "A reasonable food photo; lighting or focus could be better.",
		signal.TierLow:    "This food photo suffers from quality problems.",
	},
	signal.PurposeProductPhoto: {
		signal.TierHigh:   "A clean, well-composed product shot.",
		signal.TierMedium: "A workable product shot with minor flaws.",
		signal.TierLow:    "This product shot has noticeable quality problems.",
	},
	signal.PurposeDocument: {
		signal.TierHigh:   "A clear, readable document capture.",
		signal.TierMedium: "A readable document capture, though not perfectly clean.",
		signal.TierLow:    "This document capture may be hard to read.",
	},
	signal.PurposeScreenshot: {
		signal.TierHigh:   "A clean screenshot.",
		signal.TierMedium: "A usable screenshot.",
		signal.TierLow:    "This screenshot is degraded.",
	},
	signal.PurposeLandscape: {
		signal.TierHigh:   "A detailed, well-exposed landscape.",
		signal.TierMedium: "A pleasant landscape that could be sharper or better lit.",
		signal.TierLow:    "This landscape has noticeable quality problems.",
	},
	signal.PurposeArchitecture: {
		signal.TierHigh:   "A sharp, well-exposed architecture shot.",
		signal.TierMedium: "A solid architecture shot with minor flaws.",
		signal.TierLow:    "This architecture shot has noticeable quality problems.",
	},
	signal.PurposeWildlife: {
		signal.TierHigh:   "A sharp, well-timed wildlife shot.",
		signal.TierMedium: "A decent wildlife shot; focus or light could be better.",
		signal.TierLow:    "This wildlife shot has noticeable quality problems.",
	},
	signal.PurposeGeneral: {
		signal.TierHigh:   "A high-quality photo.",
		signal.TierMedium: "A reasonable photo with minor flaws.",
		signal.TierLow:    "This photo has noticeable quality problems.",
	},
}

// summarize builds the narrative summary from string templates keyed by
// tier and purpose, appending the issue titles when present.
func summarize(purpose signal.ImagePurpose, tier signal.QualityTier, issues []signal.QualityIssue) string {
	templates, ok := summaryTemplates[purpose]
	if !ok {
		templates = summaryTemplates[signal.PurposeGeneral]
	}
	lead, ok := templates[tier]
	if !ok {
		lead = unknownSummary
	}

	if len(issues) == 0 {
		return lead
	}

	titles := make([]string, len(issues))
	for i, issue := range issues {
		titles[i] = strings.ToLower(issue.Title)
	}
	return lead + " Issues: " + strings.Join(titles, ", ") + "."
}
