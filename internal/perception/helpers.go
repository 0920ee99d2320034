package perception

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkralik/photo-insight/internal/signal"
)

//go:embed prompts/vision_signals.txt
var visionSignalsPrompt string

// maxUploadSize is the longest image edge sent to vision backends.
const maxUploadSize = 800

// buildVisionPrompt returns the embedded signal extraction prompt.
func buildVisionPrompt() string {
	return visionSignalsPrompt
}

// extractJSON pulls the outermost JSON object out of a model response that
// may wrap it in markdown fences or prose.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}

// ParseSignalsJSON decodes a signals document, clamping every confidence
// and coordinate to the normalized range. Dimensions are taken as-is from
// the document.
func ParseSignalsJSON(data []byte) (*signal.Signals, error) {
	var sig signal.Signals
	if err := json.Unmarshal(data, &sig); err != nil {
		return nil, fmt.Errorf("failed to parse signals JSON: %w", err)
	}
	clampSignals(&sig)
	return &sig, nil
}

// parseSignals decodes a backend's JSON response into Signals and fills in
// the true image dimensions, clamping every confidence and coordinate to
// the normalized range.
func parseSignals(content string, width, height int) (*signal.Signals, error) {
	var sig signal.Signals
	if err := json.Unmarshal([]byte(extractJSON(content)), &sig); err != nil {
		return nil, fmt.Errorf("failed to parse signals JSON: %w", err)
	}
	sig.Width = width
	sig.Height = height
	clampSignals(&sig)
	return &sig, nil
}

func clampSignals(sig *signal.Signals) {
	for i := range sig.Classifications {
		sig.Classifications[i].Confidence = clamp01(sig.Classifications[i].Confidence)
	}
	for i := range sig.Objects {
		sig.Objects[i].Confidence = clamp01(sig.Objects[i].Confidence)
		sig.Objects[i].BoundingBox = clampBox(sig.Objects[i].BoundingBox)
	}
	for i := range sig.Scenes {
		sig.Scenes[i].Confidence = clamp01(sig.Scenes[i].Confidence)
	}
	for i := range sig.TextObservations {
		sig.TextObservations[i].Confidence = clamp01(sig.TextObservations[i].Confidence)
	}
	for i := range sig.RecognizedPersons {
		sig.RecognizedPersons[i].Confidence = clamp01(sig.RecognizedPersons[i].Confidence)
	}
	if sig.Saliency != nil {
		for i := range sig.Saliency.AttentionPoints {
			p := &sig.Saliency.AttentionPoints[i]
			p.Intensity = clamp01(p.Intensity)
			p.Location.X = clamp01(p.Location.X)
			p.Location.Y = clamp01(p.Location.Y)
		}
		sig.Saliency.VisualBalance.Score = clamp01(sig.Saliency.VisualBalance.Score)
	}
}

func clampBox(b signal.BoundingBox) signal.BoundingBox {
	b.X = clamp01(b.X)
	b.Y = clamp01(b.Y)
	b.W = clamp01(b.W)
	b.H = clamp01(b.H)
	if b.X+b.W > 1 {
		b.W = 1 - b.X
	}
	if b.Y+b.H > 1 {
		b.H = 1 - b.Y
	}
	return b
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
