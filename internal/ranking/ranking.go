// Package ranking implements the subject ranking engine: every candidate
// from every perception source is scored with source-trust weights,
// specificity, bounding-box prominence and saliency overlap, then a small
// ranked subject set is selected and validated.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

// Trace is an optional observability sink. The engine reports scoring and
// selection decisions through it; a nil trace disables reporting without
// any branches in the scoring logic itself.
type Trace func(format string, args ...any)

// Engine ranks subject candidates. It is stateless between calls; the
// vocabulary table is shared, immutable and safe for concurrent use.
type Engine struct {
	table *vocab.Table
	trace Trace
}

// Option configures an Engine.
type Option func(*Engine)

// WithTrace installs a trace sink for scoring diagnostics.
func WithTrace(t Trace) Option {
	return func(e *Engine) { e.trace = t }
}

// New creates a ranking engine backed by the given vocabulary table.
func New(table *vocab.Table, opts ...Option) *Engine {
	e := &Engine{table: table, trace: func(string, ...any) {}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// candidate pairs a would-be subject with its score and label specificity.
type candidate struct {
	subject     signal.PrimarySubject
	score       float64
	specificity int
}

// Rank scores every candidate from every source and returns the validated
// subject list, most important first. Absent sources contribute zero
// candidates; the worst case is an empty list, never an error.
func (e *Engine) Rank(sig *signal.Signals, fused []signal.Classification) []signal.PrimarySubject {
	var candidates []candidate
	candidates = append(candidates, e.recognizedPersonCandidates(sig)...)
	candidates = append(candidates, e.detectedPeopleCandidates(sig)...)
	candidates = append(candidates, e.objectCandidates(sig)...)
	candidates = append(candidates, e.classificationCandidates(fused)...)
	candidates = append(candidates, e.sceneCandidates(sig)...)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].subject.Label < candidates[j].subject.Label
	})

	selected := e.selectCandidates(candidates)
	subjects := e.Validate(selected)
	e.trace("ranking: %d candidates -> %d subjects", len(candidates), len(subjects))
	return subjects
}

// PersonPresent reports whether any person signal exists: a recognized
// named person or a detected face/body.
func PersonPresent(sig *signal.Signals) bool {
	if len(sig.RecognizedPersons) > 0 {
		return true
	}
	for _, o := range sig.Objects {
		if isPersonIdentifier(o.Identifier) {
			return true
		}
	}
	return false
}

func (e *Engine) recognizedPersonCandidates(sig *signal.Signals) []candidate {
	policy := e.table.Ranking()
	out := make([]candidate, 0, len(sig.RecognizedPersons))
	for _, p := range sig.RecognizedPersons {
		if p.Name == "" {
			continue
		}
		score := clamp01(p.Confidence) * policy.RecognizedPersonWeight
		e.trace("candidate recognized person %q score=%.3f", p.Name, score)
		out = append(out, candidate{
			subject: signal.PrimarySubject{
				Label:      titleCase(p.Name),
				Confidence: clamp01(p.Confidence),
				Source:     signal.SourceRecognizedFace,
			},
			score:       score,
			specificity: 5, // a named person is maximally specific
		})
	}
	return out
}

// detectedPeopleCandidates collapses all face and body detections into a
// single "Person" or "Group of N" candidate. N is the larger of the two
// counts since the same individual may be reported by both detectors.
// The candidate is always pooled, even when recognitions name the same
// people; the selection policy decides what survives.
func (e *Engine) detectedPeopleCandidates(sig *signal.Signals) []candidate {
	policy := e.table.Ranking()
	var faces, persons int
	var confSum float64
	var best *signal.DetectedObject
	for i, o := range sig.Objects {
		id := strings.ToLower(o.Identifier)
		if strings.Contains(id, "face") {
			faces++
		} else if strings.Contains(id, "person") {
			persons++
		} else {
			continue
		}
		confSum += clamp01(o.Confidence)
		if best == nil || o.Confidence > best.Confidence {
			best = &sig.Objects[i]
		}
	}

	n := max(faces, persons)
	if n == 0 {
		return nil
	}

	avg := confSum / float64(faces+persons)
	label := "Person"
	detail := ""
	if n > 1 {
		label = fmt.Sprintf("Group of %d", n)
		detail = fmt.Sprintf("%d people detected", n)
	}
	score := avg * policy.DetectedPersonWeight
	e.trace("candidate %q avg=%.3f score=%.3f", label, avg, score)

	subject := signal.PrimarySubject{
		Label:      label,
		Confidence: avg,
		Source:     signal.SourceDetectedObject,
		Detail:     detail,
	}
	if best != nil {
		box := best.BoundingBox
		subject.BoundingBox = &box
	}
	return []candidate{{subject: subject, score: score, specificity: 3}}
}

func (e *Engine) objectCandidates(sig *signal.Signals) []candidate {
	policy := e.table.Ranking()
	personPresent := PersonPresent(sig)

	var out []candidate
	for _, o := range sig.Objects {
		if isPersonIdentifier(o.Identifier) {
			continue
		}
		if e.table.IsBackgroundObject(o.Identifier) || e.table.IsClothingOrAccessory(o.Identifier) {
			continue
		}

		score := clamp01(o.Confidence) * policy.DetectedObjectWeight
		score *= 1 + o.BoundingBox.Area()*policy.BBoxAreaBoost
		overlap := SaliencyOverlap(sig.Saliency, o.BoundingBox)
		score *= 1 + overlap*policy.SaliencyBoost

		// In person+vehicle photos the vehicle is usually the intended
		// subject, so it gets the stronger context boost.
		if e.table.IsVehicleTerm(o.Identifier) {
			if personPresent {
				score *= policy.VehicleWithPersonBoost
			} else {
				score *= policy.VehicleAloneBoost
			}
		}

		e.trace("candidate object %q overlap=%.3f score=%.3f", o.Identifier, overlap, score)
		box := o.BoundingBox
		out = append(out, candidate{
			subject: signal.PrimarySubject{
				Label:       titleCase(o.Identifier),
				Confidence:  clamp01(o.Confidence),
				Source:      signal.SourceDetectedObject,
				BoundingBox: &box,
			},
			score:       score,
			specificity: e.table.Specificity(o.Identifier),
		})
	}
	return out
}

func (e *Engine) classificationCandidates(fused []signal.Classification) []candidate {
	policy := e.table.Ranking()

	var out []candidate
	for _, c := range fused {
		if e.table.IsClothingOrAccessory(c.Identifier) {
			continue
		}
		spec := e.table.Specificity(c.Identifier)
		if spec == 0 {
			continue
		}
		if c.Confidence < e.table.ConfidenceGate(spec) {
			continue
		}

		score := clamp01(c.Confidence) * float64(spec) * policy.ClassificationWeight
		if e.table.IsVehicleTerm(c.Identifier) {
			score *= policy.VehicleClassificationBoost
		}

		e.trace("candidate classification %q spec=%d score=%.3f", c.Identifier, spec, score)
		out = append(out, candidate{
			subject: signal.PrimarySubject{
				Label:      titleCase(c.Identifier),
				Confidence: clamp01(c.Confidence),
				Source:     signal.SourceClassification,
			},
			score:       score,
			specificity: spec,
		})
	}
	return out
}

// sceneCandidates turns whole-image scene tags into low-trust candidates.
// Indoor/outdoor tags become "Indoor Scene"/"Outdoor Scene" so downstream
// contradiction validation can reason about them.
func (e *Engine) sceneCandidates(sig *signal.Signals) []candidate {
	policy := e.table.Ranking()

	var out []candidate
	for _, s := range sig.Scenes {
		spec := e.table.Specificity(s.Identifier)
		if spec == 0 {
			continue
		}
		if s.Confidence < e.table.ConfidenceGate(spec) {
			continue
		}

		label := titleCase(s.Identifier)
		lower := strings.ToLower(s.Identifier)
		if lower == "indoor" || lower == "outdoor" {
			label += " Scene"
		}

		score := clamp01(s.Confidence) * float64(spec) * policy.ClassificationWeight
		e.trace("candidate scene %q spec=%d score=%.3f", s.Identifier, spec, score)
		out = append(out, candidate{
			subject: signal.PrimarySubject{
				Label:      label,
				Confidence: clamp01(s.Confidence),
				Source:     signal.SourceScene,
			},
			score:       score,
			specificity: spec,
		})
	}
	return out
}

// selectCandidates applies the adaptive-threshold selection policy over
// score-sorted candidates: the top candidate is always kept, later ones
// must reach a fraction of the top score that depends on their source and
// specificity.
func (e *Engine) selectCandidates(candidates []candidate) []candidate {
	if len(candidates) == 0 {
		return nil
	}
	policy := e.table.Ranking()
	top := candidates[0].score

	selected := []candidate{candidates[0]}
	for _, c := range candidates[1:] {
		if len(selected) >= policy.MaxSubjects {
			break
		}
		keep := c.score >= top*policy.KeepRatio ||
			(c.subject.Source == signal.SourceDetectedObject && c.score >= top*policy.ObjectKeepRatio) ||
			(c.subject.Source == signal.SourceClassification &&
				c.specificity >= policy.ClassificationKeepMinSpecificity &&
				c.score >= top*policy.ClassificationKeepRatio)
		if !keep {
			continue
		}
		e.trace("selected %q score=%.3f (top=%.3f)", c.subject.Label, c.score, top)
		selected = append(selected, c)
	}
	return selected
}

// Validate applies post-selection contradiction checks: an indoor subject
// and an outdoor subject cannot both stand, and generic subjects yield to
// specific ones when the list runs long.
func (e *Engine) Validate(selected []candidate) []signal.PrimarySubject {
	// Indoor vs outdoor: keep whichever has the higher confidence.
	indoorIdx, outdoorIdx := -1, -1
	for i, c := range selected {
		lower := strings.ToLower(c.subject.Label)
		if strings.Contains(lower, "indoor") {
			indoorIdx = i
		} else if strings.Contains(lower, "outdoor") {
			outdoorIdx = i
		}
	}
	if indoorIdx >= 0 && outdoorIdx >= 0 {
		drop := indoorIdx
		if selected[outdoorIdx].subject.Confidence < selected[indoorIdx].subject.Confidence {
			drop = outdoorIdx
		}
		e.trace("dropping contradictory subject %q", selected[drop].subject.Label)
		selected = append(selected[:drop:drop], selected[drop+1:]...)
	}

	// With more than two subjects, generic labels yield to specific ones.
	if len(selected) > 2 {
		hasSpecific := false
		for _, c := range selected {
			if c.specificity > 2 {
				hasSpecific = true
				break
			}
		}
		if hasSpecific {
			kept := selected[:0:0]
			for _, c := range selected {
				if c.specificity > 2 {
					kept = append(kept, c)
				} else {
					e.trace("dropping generic subject %q", c.subject.Label)
				}
			}
			selected = kept
		}
	}

	subjects := make([]signal.PrimarySubject, 0, len(selected))
	for _, c := range selected {
		subjects = append(subjects, c.subject)
	}
	return subjects
}

func isPersonIdentifier(id string) bool {
	lower := strings.ToLower(id)
	return strings.Contains(lower, "person") || strings.Contains(lower, "face")
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
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
