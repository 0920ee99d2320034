// Package perception provides the boundary to the weak-signal sources the
// analysis core consumes: vision backends that classify, detect and read
// an image, returning typed signals. The core never calls a backend
// itself; callers run perception first and hand the signals to the
// analyzer.
package perception

import (
	"context"

	"github.com/mkralik/photo-insight/internal/signal"
)

// Provider defines the interface for perception backends.
type Provider interface {
	Name() string
	Perceive(ctx context.Context, imageData []byte) (*signal.Signals, error)
}

// Usage tracks token usage and calculates cost for LLM-backed providers.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}
