// Package fusion merges classification lists from multiple independent
// classifiers into a single deduplicated, confidence-resolved,
// specificity-ranked list.
package fusion

import (
	"sort"

	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

// Merge fuses any number of classification lists into one ranked list.
// For identifiers reported by more than one classifier the maximum
// confidence wins; a re-report with lower confidence never overrides a
// higher one. When personPresent is true, clothing and accessory terms are
// dropped so a person wearing glasses is not tagged "eyewear".
//
// The result is sorted descending by ranking score (specificity times
// confidence), ties broken by identifier, so output is deterministic for
// any input order. Merging an already-merged list changes nothing.
func Merge(table *vocab.Table, personPresent bool, lists ...[]signal.Classification) []signal.Classification {
	best := make(map[string]signal.Classification)
	for _, list := range lists {
		for _, c := range list {
			id := NormalizeIdentifier(c.Identifier)
			if id == "" {
				continue
			}
			if personPresent && table.IsClothingOrAccessory(id) {
				continue
			}
			if prev, ok := best[id]; !ok || c.Confidence > prev.Confidence {
				best[id] = signal.Classification{
					Identifier: id,
					Confidence: clamp01(c.Confidence),
				}
			}
		}
	}

	merged := make([]signal.Classification, 0, len(best))
	for _, c := range best {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		si := table.RankingScore(merged[i].Identifier, merged[i].Confidence)
		sj := table.RankingScore(merged[j].Identifier, merged[j].Confidence)
		if si != sj {
			return si > sj
		}
		return merged[i].Identifier < merged[j].Identifier
	})
	return merged
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
