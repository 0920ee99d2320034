package web

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mkralik/photo-insight/internal/perception"
	"github.com/mkralik/photo-insight/internal/signal"
)

// maxRequestBytes caps analyze request bodies (image plus signals).
const maxRequestBytes = 32 << 20

// analyzeResponse wraps a result with its request ID.
type analyzeResponse struct {
	RequestID string        `json:"request_id"`
	Provider  string        `json:"provider,omitempty"`
	Result    signal.Result `json:"result"`
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze runs one analysis request. Two request shapes are
// accepted:
//   - application/json: a signals document, no pixel data (quality
//     assessment degrades to its neutral default);
//   - multipart/form-data: an "image" file plus an optional "signals"
//     JSON part; without signals the configured provider is called.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	requestID := uuid.NewString()

	var (
		sig       *signal.Signals
		img       image.Image
		imageData []byte
		provider  string
	)

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		sig, err = perception.ParseSignalsJSON(body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid signals document")
			return
		}

	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart request")
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			respondError(w, http.StatusBadRequest, "missing image part")
			return
		}
		defer file.Close()

		imageData, err = io.ReadAll(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read image")
			return
		}
		decoded, _, err := image.Decode(bytes.NewReader(imageData))
		if err != nil {
			respondError(w, http.StatusBadRequest, "unsupported image format")
			return
		}
		img = decoded

		if raw := r.FormValue("signals"); raw != "" {
			sig, err = perception.ParseSignalsJSON([]byte(raw))
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid signals document")
				return
			}
		}

	default:
		respondError(w, http.StatusUnsupportedMediaType, "expected application/json or multipart/form-data")
		return
	}

	if sig == nil {
		if s.provider == nil {
			respondError(w, http.StatusBadRequest, "no signals supplied and no perception provider configured")
			return
		}
		perceived, err := s.provider.Perceive(r.Context(), imageData)
		if err != nil {
			log.Printf("perception failed (request %s): %v", requestID, err)
			respondError(w, http.StatusBadGateway, "perception provider failed")
			return
		}
		sig = perceived
		provider = s.provider.Name()
	}

	if img != nil && sig.Width == 0 {
		bounds := img.Bounds()
		sig.Width = bounds.Dx()
		sig.Height = bounds.Dy()
	}

	result := s.analyzer.Analyze(img, sig)
	respondJSON(w, http.StatusOK, analyzeResponse{
		RequestID: requestID,
		Provider:  provider,
		Result:    result,
	})
}
