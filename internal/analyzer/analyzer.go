// Package analyzer wires the fusion, purpose, ranking and quality
// components into a single stateless analysis pipeline.
package analyzer

import (
	"image"

	"github.com/mkralik/photo-insight/internal/fusion"
	"github.com/mkralik/photo-insight/internal/purpose"
	"github.com/mkralik/photo-insight/internal/quality"
	"github.com/mkralik/photo-insight/internal/ranking"
	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

// Analyzer fuses per-source perception outputs into ranked subjects, a
// purpose, and a purpose-aware quality assessment. It holds only immutable
// collaborators and is safe for concurrent use.
type Analyzer struct {
	table   *vocab.Table
	ranker  *ranking.Engine
	quality *quality.Engine
}

// Option configures an Analyzer.
type Option func(*options)

type options struct {
	trace ranking.Trace
}

// WithTrace installs a trace sink for scoring diagnostics.
func WithTrace(t ranking.Trace) Option {
	return func(o *options) { o.trace = t }
}

// New creates an analyzer backed by the given vocabulary and policy table.
func New(table *vocab.Table, opts ...Option) *Analyzer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var rankOpts []ranking.Option
	if o.trace != nil {
		rankOpts = append(rankOpts, ranking.WithTrace(o.trace))
	}

	return &Analyzer{
		table:   table,
		ranker:  ranking.New(table, rankOpts...),
		quality: quality.New(table),
	}
}

// Analyze runs one analysis request. Output is a pure function of the
// inputs: identical signals produce identical results regardless of list
// order. img may be nil when pixel data could not be read; the quality
// assessment then degrades to a documented neutral default.
func (a *Analyzer) Analyze(img image.Image, sig *signal.Signals) signal.Result {
	if sig == nil {
		sig = &signal.Signals{}
	}

	personPresent := ranking.PersonPresent(sig)
	fused := fusion.Merge(a.table, personPresent, sig.Classifications)

	detected := purpose.Detect(a.table, sig, fused)
	subjects := a.ranker.Rank(sig, fused)
	assessment := a.quality.Assess(img, detected)

	return signal.Result{
		Subjects: subjects,
		Purpose:  detected,
		Quality:  assessment,
	}
}

// Fuse exposes the classification fusion stage on its own, for callers
// that only need the merged list.
func (a *Analyzer) Fuse(sig *signal.Signals) []signal.Classification {
	return fusion.Merge(a.table, ranking.PersonPresent(sig), sig.Classifications)
}
