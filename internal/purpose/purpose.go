// Package purpose maps fused perception signals to exactly one image
// purpose through a priority-ordered heuristic cascade. The first matching
// rule wins and no further rules are evaluated.
package purpose

import (
	"strings"

	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

// Detect classifies the image into one purpose category. The fused list is
// the output of fusion.Merge; sig carries the raw per-source outputs.
func Detect(table *vocab.Table, sig *signal.Signals, fused []signal.Classification) signal.ImagePurpose {
	policy := table.Purpose()

	faceCount, personCount := countPeople(sig.Objects)
	dominant := max(faceCount, personCount)
	if dominant == 1 {
		return signal.PurposePortrait
	}
	if dominant > 1 {
		return signal.PurposeGroupPhoto
	}

	coverage := TextCoverage(table, len(sig.TextObservations))

	// Food wins over document when OCR text is incidental, e.g. a menu
	// photographed for the dish, not the words.
	if hasFoodSignal(table, sig, fused) && coverage < policy.FoodMaxTextCoverage {
		return signal.PurposeFood
	}

	if hasProductSignal(table, sig) && sig.Saliency != nil &&
		sig.Saliency.VisualBalance.Score > policy.ProductMinBalance {
		return signal.PurposeProductPhoto
	}

	textItems := len(sig.TextObservations)
	documentShaped := (textItems >= policy.DocumentMinTextItems && coverage > policy.DocumentMinCoverage) ||
		textItems >= policy.DocumentForceTextItems ||
		hasDocumentObject(table, sig.Objects)
	if documentShaped {
		if hasUIChrome(table, sig, fused) && coverage > policy.ScreenshotMinCoverage {
			return signal.PurposeScreenshot
		}
		return signal.PurposeDocument
	}

	if personCount == 0 && hasAnimalSignal(table, fused, sig.Scenes) {
		return signal.PurposeWildlife
	}

	if hasOutdoorScene(sig.Scenes) && hasNatureSignal(table, fused, sig.Scenes) {
		return signal.PurposeLandscape
	}

	if hasBuildingSignal(table, fused, sig.Scenes) {
		return signal.PurposeArchitecture
	}

	return signal.PurposeGeneral
}

// TextCoverage estimates how much of the image is text. It is a coarse
// proxy derived from the OCR item count, not a pixel measurement.
func TextCoverage(table *vocab.Table, textItems int) float64 {
	divisor := table.Purpose().TextCoverageDivisor
	if divisor <= 0 {
		divisor = 100
	}
	coverage := float64(textItems) / divisor
	if coverage > 1 {
		return 1
	}
	return coverage
}

// countPeople counts face and body detections separately. The same
// individual may be reported by both detectors.
func countPeople(objects []signal.DetectedObject) (faces, persons int) {
	for _, o := range objects {
		id := strings.ToLower(o.Identifier)
		switch {
		case strings.Contains(id, "face"):
			faces++
		case strings.Contains(id, "person"):
			persons++
		}
	}
	return faces, persons
}

func hasFoodSignal(table *vocab.Table, sig *signal.Signals, fused []signal.Classification) bool {
	for _, c := range fused {
		if table.IsFoodTerm(c.Identifier) {
			return true
		}
	}
	for _, s := range sig.Scenes {
		if table.IsFoodTerm(s.Identifier) {
			return true
		}
	}
	return false
}

func hasProductSignal(table *vocab.Table, sig *signal.Signals) bool {
	for _, o := range sig.Objects {
		if table.IsProductTerm(o.Identifier) {
			return true
		}
	}
	return false
}

func hasDocumentObject(table *vocab.Table, objects []signal.DetectedObject) bool {
	for _, o := range objects {
		if table.IsDocumentTerm(o.Identifier) {
			return true
		}
	}
	return false
}

func hasUIChrome(table *vocab.Table, sig *signal.Signals, fused []signal.Classification) bool {
	for _, c := range fused {
		if table.IsUIChromeTerm(c.Identifier) {
			return true
		}
	}
	for _, t := range sig.TextObservations {
		if table.IsUIChromeTerm(t.Text) {
			return true
		}
	}
	return false
}

func hasOutdoorScene(scenes []signal.SceneClassification) bool {
	for _, s := range scenes {
		if strings.Contains(strings.ToLower(s.Identifier), "outdoor") {
			return true
		}
	}
	return false
}

func hasNatureSignal(table *vocab.Table, fused []signal.Classification, scenes []signal.SceneClassification) bool {
	for _, c := range fused {
		if table.IsNatureTerm(c.Identifier) {
			return true
		}
	}
	for _, s := range scenes {
		if table.IsNatureTerm(s.Identifier) {
			return true
		}
	}
	return false
}

func hasAnimalSignal(table *vocab.Table, fused []signal.Classification, scenes []signal.SceneClassification) bool {
	for _, c := range fused {
		if table.IsAnimalTerm(c.Identifier) {
			return true
		}
	}
	for _, s := range scenes {
		if table.IsAnimalTerm(s.Identifier) {
			return true
		}
	}
	return false
}

func hasBuildingSignal(table *vocab.Table, fused []signal.Classification, scenes []signal.SceneClassification) bool {
	for _, c := range fused {
		if table.IsBuildingTerm(c.Identifier) {
			return true
		}
	}
	for _, s := range scenes {
		if table.IsBuildingTerm(s.Identifier) {
			return true
		}
	}
	return false
}
