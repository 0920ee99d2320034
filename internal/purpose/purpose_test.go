package purpose

import (
	"math"
	"testing"

	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

func detect(t *testing.T, sig *signal.Signals) signal.ImagePurpose {
	t.Helper()
	table := vocab.MustLoad()
	return Detect(table, sig, sig.Classifications)
}

func textItems(n int) []signal.TextObservation {
	items := make([]signal.TextObservation, n)
	for i := range items {
		items[i] = signal.TextObservation{Text: "line", Confidence: 0.9}
	}
	return items
}

func TestDetectCascade(t *testing.T) {
	tests := []struct {
		name     string
		sig      *signal.Signals
		expected signal.ImagePurpose
	}{
		{
			name: "single face is a portrait",
			sig: &signal.Signals{
				Objects: []signal.DetectedObject{
					{Identifier: "face", Confidence: 0.95},
				},
			},
			expected: signal.PurposePortrait,
		},
		{
			name: "face and person double-detection is still a portrait",
			sig: &signal.Signals{
				Objects: []signal.DetectedObject{
					{Identifier: "face", Confidence: 0.95},
					{Identifier: "person", Confidence: 0.9},
				},
			},
			expected: signal.PurposePortrait,
		},
		{
			name: "several people form a group photo",
			sig: &signal.Signals{
				Objects: []signal.DetectedObject{
					{Identifier: "person", Confidence: 0.9},
					{Identifier: "person", Confidence: 0.85},
					{Identifier: "person", Confidence: 0.8},
				},
			},
			expected: signal.PurposeGroupPhoto,
		},
		{
			name: "food label with incidental text is food, not document",
			sig: &signal.Signals{
				Classifications: []signal.Classification{
					{Identifier: "pizza", Confidence: 0.9},
				},
				TextObservations: textItems(10),
			},
			expected: signal.PurposeFood,
		},
		{
			name: "food label buried in dense text is a document",
			sig: &signal.Signals{
				Classifications: []signal.Classification{
					{Identifier: "pizza", Confidence: 0.9},
				},
				TextObservations: textItems(50),
			},
			expected: signal.PurposeDocument,
		},
		{
			name: "well-composed product shot",
			sig: &signal.Signals{
				Objects: []signal.DetectedObject{
					{Identifier: "perfume bottle", Confidence: 0.85},
				},
				Saliency: &signal.SaliencyAnalysis{
					VisualBalance: signal.VisualBalance{Score: 0.8},
				},
			},
			expected: signal.PurposeProductPhoto,
		},
		{
			name: "product object without composition stays general",
			sig: &signal.Signals{
				Objects: []signal.DetectedObject{
					{Identifier: "perfume bottle", Confidence: 0.85},
				},
				Saliency: &signal.SaliencyAnalysis{
					VisualBalance: signal.VisualBalance{Score: 0.4},
				},
			},
			expected: signal.PurposeGeneral,
		},
		{
			name: "dense text is a document",
			sig: &signal.Signals{
				TextObservations: textItems(30),
			},
			expected: signal.PurposeDocument,
		},
		{
			name: "dense text with UI chrome is a screenshot",
			sig: &signal.Signals{
				Classifications: []signal.Classification{
					{Identifier: "menu bar", Confidence: 0.8},
				},
				TextObservations: textItems(30),
			},
			expected: signal.PurposeScreenshot,
		},
		{
			name: "document-shaped object with sparse text is a document",
			sig: &signal.Signals{
				Objects: []signal.DetectedObject{
					{Identifier: "document", Confidence: 0.8},
				},
			},
			expected: signal.PurposeDocument,
		},
		{
			name: "outdoor scene with terrain is a landscape",
			sig: &signal.Signals{
				Scenes: []signal.SceneClassification{
					{Identifier: "outdoor", Confidence: 0.9},
					{Identifier: "mountain", Confidence: 0.8},
				},
			},
			expected: signal.PurposeLandscape,
		},
		{
			name: "outdoor scene without terrain is not a landscape",
			sig: &signal.Signals{
				Scenes: []signal.SceneClassification{
					{Identifier: "outdoor", Confidence: 0.9},
				},
			},
			expected: signal.PurposeGeneral,
		},
		{
			name: "animal without people is wildlife",
			sig: &signal.Signals{
				Classifications: []signal.Classification{
					{Identifier: "deer", Confidence: 0.85},
				},
				Scenes: []signal.SceneClassification{
					{Identifier: "outdoor", Confidence: 0.9},
					{Identifier: "forest", Confidence: 0.7},
				},
			},
			expected: signal.PurposeWildlife,
		},
		{
			name: "building dominates architecture",
			sig: &signal.Signals{
				Classifications: []signal.Classification{
					{Identifier: "cathedral", Confidence: 0.85},
				},
			},
			expected: signal.PurposeArchitecture,
		},
		{
			name:     "nothing matches is general",
			sig:      &signal.Signals{},
			expected: signal.PurposeGeneral,
		},
		{
			name: "person outranks food",
			sig: &signal.Signals{
				Objects: []signal.DetectedObject{
					{Identifier: "person", Confidence: 0.9},
				},
				Classifications: []signal.Classification{
					{Identifier: "pizza", Confidence: 0.95},
				},
			},
			expected: signal.PurposePortrait,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detect(t, tt.sig); got != tt.expected {
				t.Errorf("Detect() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTextCoverage(t *testing.T) {
	table := vocab.MustLoad()

	tests := []struct {
		items    int
		expected float64
	}{
		{0, 0},
		{10, 0.1},
		{45, 0.45},
		{100, 1.0},
		{250, 1.0}, // capped
	}

	for _, tt := range tests {
		if got := TextCoverage(table, tt.items); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("TextCoverage(%d) = %v, want %v", tt.items, got, tt.expected)
		}
	}
}
