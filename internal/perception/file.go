package perception

import (
	"context"
	"fmt"
	"os"

	"github.com/mkralik/photo-insight/internal/signal"
)

// FileProvider reads pre-computed signals from a JSON document instead of
// calling a vision backend. Useful offline and in tests, and the document
// shape doubles as the web API request format.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Name() string {
	return "file:" + p.path
}

// Perceive loads the signals document. Image dimensions come from the
// image data when the document does not carry them.
func (p *FileProvider) Perceive(ctx context.Context, imageData []byte) (*signal.Signals, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signals file: %w", err)
	}

	sig, err := ParseSignalsJSON(data)
	if err != nil {
		return nil, err
	}

	if sig.Width == 0 && len(imageData) > 0 {
		if w, h, err := DecodeDimensions(imageData); err == nil {
			sig.Width = w
			sig.Height = h
		}
	}
	return sig, nil
}
