package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkralik/photo-insight/internal/analyzer"
	"github.com/mkralik/photo-insight/internal/config"
	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	a := analyzer.New(vocab.MustLoad())
	return NewServer(config.Load(), a, nil, 0, "")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestAnalyzeSignalsOnly(t *testing.T) {
	s := newTestServer(t)

	doc := `{
		"objects": [{"identifier": "face", "confidence": 0.95,
			"bounding_box": {"x": 0.35, "y": 0.15, "w": 0.3, "h": 0.4}}],
		"width": 1200,
		"height": 1600
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RequestID string        `json:"request_id"`
		Result    signal.Result `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.RequestID == "" {
		t.Error("expected a request ID")
	}
	if resp.Result.Purpose != signal.PurposePortrait {
		t.Errorf("purpose = %v, want portrait", resp.Result.Purpose)
	}
	// No pixel data in signals-only mode.
	if resp.Result.Quality.Quality != signal.TierUnknown {
		t.Errorf("tier = %v, want unknown without pixel data", resp.Result.Quality.Quality)
	}
}

func TestAnalyzeInvalidSignals(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeUnsupportedMediaType(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{128, 128, 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, imageData []byte, signalsJSON string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", "test.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(imageData); err != nil {
		t.Fatalf("write image part: %v", err)
	}
	if signalsJSON != "" {
		if err := mw.WriteField("signals", signalsJSON); err != nil {
			t.Fatalf("write signals field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeMultipartWithSignals(t *testing.T) {
	s := newTestServer(t)

	doc := `{"classifications": [{"identifier": "pizza", "confidence": 0.9}]}`
	body, contentType := multipartBody(t, encodePNG(t, 80, 60), doc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Result signal.Result `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Result.Purpose != signal.PurposeFood {
		t.Errorf("purpose = %v, want food", resp.Result.Purpose)
	}
	// Pixel data present: the quality assessment must be real.
	if resp.Result.Quality.Quality == signal.TierUnknown {
		t.Error("tier must not be unknown when the image was decoded")
	}
}

func TestAnalyzeMultipartWithoutSignalsOrProvider(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartBody(t, encodePNG(t, 40, 30), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when no provider is configured", rec.Code)
	}
}

func TestAnalyzeMultipartBadImage(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartBody(t, []byte("not an image"), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for undecodable image", rec.Code)
	}
}
