package perception

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "bare object",
			content:  `{"classifications":[]}`,
			expected: `{"classifications":[]}`,
		},
		{
			name:     "markdown fences",
			content:  "```json\n{\"classifications\":[]}\n```",
			expected: `{"classifications":[]}`,
		},
		{
			name:     "surrounding prose",
			content:  `Here is the result: {"a":1} hope it helps`,
			expected: `{"a":1}`,
		},
		{
			name:     "no object passes through",
			content:  "sorry, no JSON here",
			expected: "sorry, no JSON here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.content); got != tt.expected {
				t.Errorf("extractJSON() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseSignalsJSONClamps(t *testing.T) {
	doc := []byte(`{
		"classifications": [{"identifier": "dog", "confidence": 1.4}],
		"objects": [{
			"identifier": "car",
			"confidence": -0.2,
			"bounding_box": {"x": 0.8, "y": 0.0, "w": 0.5, "h": 1.5}
		}],
		"saliency": {
			"attention_points": [{"location": {"x": 2.0, "y": 0.5}, "intensity": 1.2}],
			"visual_balance": {"score": -1}
		},
		"width": 1024,
		"height": 768
	}`)

	sig, err := ParseSignalsJSON(doc)
	if err != nil {
		t.Fatalf("ParseSignalsJSON() failed: %v", err)
	}

	if sig.Classifications[0].Confidence != 1.0 {
		t.Errorf("confidence = %v, want clamped to 1", sig.Classifications[0].Confidence)
	}
	if sig.Objects[0].Confidence != 0.0 {
		t.Errorf("confidence = %v, want clamped to 0", sig.Objects[0].Confidence)
	}

	box := sig.Objects[0].BoundingBox
	if math.Abs(box.X+box.W-1.0) > 1e-9 {
		t.Errorf("box extends past the right edge: x=%v w=%v", box.X, box.W)
	}
	if math.Abs(box.Y+box.H-1.0) > 1e-9 {
		t.Errorf("box extends past the bottom edge: y=%v h=%v", box.Y, box.H)
	}

	point := sig.Saliency.AttentionPoints[0]
	if point.Location.X != 1.0 || point.Intensity != 1.0 {
		t.Errorf("attention point not clamped: %+v", point)
	}
	if sig.Saliency.VisualBalance.Score != 0 {
		t.Errorf("balance score = %v, want clamped to 0", sig.Saliency.VisualBalance.Score)
	}

	if sig.Width != 1024 || sig.Height != 768 {
		t.Errorf("dimensions = %dx%d, want 1024x768", sig.Width, sig.Height)
	}
}

func TestParseSignalsJSONInvalid(t *testing.T) {
	if _, err := ParseSignalsJSON([]byte("not json")); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{100, 120, 140, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.json")
	doc := []byte(`{"classifications": [{"identifier": "dog", "confidence": 0.8}]}`)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("write signals file: %v", err)
	}

	p := NewFileProvider(path)
	sig, err := p.Perceive(context.Background(), encodePNG(t, 64, 48))
	if err != nil {
		t.Fatalf("Perceive() failed: %v", err)
	}

	if len(sig.Classifications) != 1 || sig.Classifications[0].Identifier != "dog" {
		t.Errorf("classifications = %v, want single dog", sig.Classifications)
	}
	// Dimensions absent from the document come from the image data.
	if sig.Width != 64 || sig.Height != 48 {
		t.Errorf("dimensions = %dx%d, want 64x48", sig.Width, sig.Height)
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := p.Perceive(context.Background(), nil); err == nil {
		t.Error("expected an error for a missing signals file")
	}
}

func TestResizeImage(t *testing.T) {
	data := encodePNG(t, 1600, 800)

	resized, err := ResizeImage(data, 800)
	if err != nil {
		t.Fatalf("ResizeImage() failed: %v", err)
	}

	w, h, err := DecodeDimensions(resized)
	if err != nil {
		t.Fatalf("DecodeDimensions() failed: %v", err)
	}
	if w != 800 || h != 400 {
		t.Errorf("resized to %dx%d, want 800x400 (aspect preserved)", w, h)
	}
}

func TestResizeImageSmallPassesThrough(t *testing.T) {
	data := encodePNG(t, 100, 60)

	resized, err := ResizeImage(data, 800)
	if err != nil {
		t.Fatalf("ResizeImage() failed: %v", err)
	}

	w, h, err := DecodeDimensions(resized)
	if err != nil {
		t.Fatalf("DecodeDimensions() failed: %v", err)
	}
	if w != 100 || h != 60 {
		t.Errorf("small image re-dimensioned to %dx%d, want 100x60", w, h)
	}
}

func TestDecodeDimensionsInvalid(t *testing.T) {
	if _, _, err := DecodeDimensions([]byte("not an image")); err == nil {
		t.Error("expected an error for invalid image data")
	}
}
