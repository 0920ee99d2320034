package ranking

import "github.com/mkralik/photo-insight/internal/signal"

// SaliencyOverlap returns the fraction of total attention-point intensity
// that falls inside the bounding box. Without a saliency map (or with zero
// total intensity) it falls back to a center-distance proxy: boxes near the
// image center score higher.
func SaliencyOverlap(saliency *signal.SaliencyAnalysis, box signal.BoundingBox) float64 {
	if saliency == nil || len(saliency.AttentionPoints) == 0 {
		return centerProximity(box)
	}

	var total, inside float64
	for _, p := range saliency.AttentionPoints {
		total += p.Intensity
		if box.Contains(p.Location) {
			inside += p.Intensity
		}
	}
	if total <= 0 {
		return centerProximity(box)
	}
	return inside / total
}

func centerProximity(box signal.BoundingBox) float64 {
	d := signal.Distance(box.Center(), signal.Point{X: 0.5, Y: 0.5})
	if d >= 1 {
		return 0
	}
	return 1 - d
}
