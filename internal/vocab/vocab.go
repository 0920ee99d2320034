// Package vocab provides the static vocabulary and policy table shared by
// the fusion, ranking, purpose and quality components. The table is loaded
// once from an embedded YAML file and is read-only afterwards; components
// receive it by reference and only call lookup methods.
package vocab

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var vocabularyYAML []byte

// Table is the immutable vocabulary and policy knowledge base.
type Table struct {
	specificity map[string]int
	// Keys sorted longest first, then lexicographically, so substring
	// fallback lookups are deterministic regardless of map iteration order.
	sortedKeys []string

	fallback FallbackSpecificity

	clothing   []string
	background []string
	vehicles   []string

	keywords map[string][]string

	tiers   ConfidenceTiers
	ranking RankingPolicy
	purpose PurposePolicy
	quality QualityPolicy
}

// FallbackSpecificity holds the word-count heuristic for unknown terms.
type FallbackSpecificity struct {
	ThreeOrMoreWords int `yaml:"three_or_more_words"`
	TwoWords         int `yaml:"two_words"`
	OneWord          int `yaml:"one_word"`
}

// ConfidenceTiers are the four fixed thresholds used to bucket raw
// classifier confidence.
type ConfidenceTiers struct {
	High    float64 `yaml:"high"`
	Medium  float64 `yaml:"medium"`
	Low     float64 `yaml:"low"`
	Minimum float64 `yaml:"minimum"`
}

// RankingPolicy centralizes every threshold used by the subject ranking
// engine.
type RankingPolicy struct {
	RecognizedPersonWeight           float64            `yaml:"recognized_person_weight"`
	DetectedPersonWeight             float64            `yaml:"detected_person_weight"`
	DetectedObjectWeight             float64            `yaml:"detected_object_weight"`
	ClassificationWeight             float64            `yaml:"classification_weight"`
	BBoxAreaBoost                    float64            `yaml:"bbox_area_boost"`
	SaliencyBoost                    float64            `yaml:"saliency_boost"`
	VehicleWithPersonBoost           float64            `yaml:"vehicle_with_person_boost"`
	VehicleAloneBoost                float64            `yaml:"vehicle_alone_boost"`
	VehicleClassificationBoost       float64            `yaml:"vehicle_classification_boost"`
	MaxSubjects                      int                `yaml:"max_subjects"`
	KeepRatio                        float64            `yaml:"keep_ratio"`
	ObjectKeepRatio                  float64            `yaml:"object_keep_ratio"`
	ClassificationKeepRatio          float64            `yaml:"classification_keep_ratio"`
	ClassificationKeepMinSpecificity int                `yaml:"classification_keep_min_specificity"`
	ConfidenceGates                  map[string]float64 `yaml:"confidence_gates"`
}

// PurposePolicy centralizes the purpose detector thresholds.
type PurposePolicy struct {
	FoodMaxTextCoverage    float64 `yaml:"food_max_text_coverage"`
	ProductMinBalance      float64 `yaml:"product_min_balance"`
	DocumentMinTextItems   int     `yaml:"document_min_text_items"`
	DocumentMinCoverage    float64 `yaml:"document_min_coverage"`
	DocumentForceTextItems int     `yaml:"document_force_text_items"`
	ScreenshotMinCoverage  float64 `yaml:"screenshot_min_coverage"`
	TextCoverageDivisor    float64 `yaml:"text_coverage_divisor"`
}

// QualityWeights is a per-purpose weight triple for the overall score.
type QualityWeights struct {
	Resolution float64 `yaml:"resolution"`
	Sharpness  float64 `yaml:"sharpness"`
	Exposure   float64 `yaml:"exposure"`
}

// ResolutionTier is one megapixel/min-dimension threshold pair.
type ResolutionTier struct {
	Megapixels   float64 `yaml:"megapixels"`
	MinDimension int     `yaml:"min_dimension"`
}

// PurposeThresholds carries the per-purpose issue thresholds and weights.
type PurposeThresholds struct {
	Weights       QualityWeights `yaml:"weights"`
	MinSharpness  float64        `yaml:"min_sharpness"`
	ExposureLow   float64        `yaml:"exposure_low"`
	ExposureHigh  float64        `yaml:"exposure_high"`
	MinMegapixels float64        `yaml:"min_megapixels"`
}

// QualityPolicy centralizes the quality engine constants.
type QualityPolicy struct {
	SampleStep        int                          `yaml:"sample_step"`
	SharpnessNorm     float64                      `yaml:"sharpness_norm"`
	ExposureTolerance float64                      `yaml:"exposure_tolerance"`
	NeutralExposure   float64                      `yaml:"neutral_exposure"`
	TierHigh          float64                      `yaml:"tier_high"`
	TierMedium        float64                      `yaml:"tier_medium"`
	ResolutionTiers   map[string]ResolutionTier    `yaml:"resolution_tiers"`
	DefaultWeights    QualityWeights               `yaml:"default_weights"`
	Purposes          map[string]PurposeThresholds `yaml:"purposes"`
}

type tableFile struct {
	Specificity         map[int][]string    `yaml:"specificity"`
	FallbackSpecificity FallbackSpecificity `yaml:"fallback_specificity"`
	ClothingAccessories []string            `yaml:"clothing_accessories"`
	BackgroundObjects   []string            `yaml:"background_objects"`
	Vehicles            []string            `yaml:"vehicles"`
	ConfidenceTiers     ConfidenceTiers     `yaml:"confidence_tiers"`
	Keywords            map[string][]string `yaml:"keywords"`
	Ranking             RankingPolicy       `yaml:"ranking"`
	Purpose             PurposePolicy       `yaml:"purpose"`
	Quality             QualityPolicy       `yaml:"quality"`
}

// Load parses the embedded vocabulary file into an immutable Table.
func Load() (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(vocabularyYAML, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vocabulary: %w", err)
	}

	t := &Table{
		specificity: make(map[string]int),
		fallback:    f.FallbackSpecificity,
		clothing:    lowerAll(f.ClothingAccessories),
		background:  lowerAll(f.BackgroundObjects),
		vehicles:    lowerAll(f.Vehicles),
		keywords:    make(map[string][]string, len(f.Keywords)),
		tiers:       f.ConfidenceTiers,
		ranking:     f.Ranking,
		purpose:     f.Purpose,
		quality:     f.Quality,
	}
	for level, terms := range f.Specificity {
		for _, term := range terms {
			t.specificity[strings.ToLower(term)] = level
		}
	}
	for name, terms := range f.Keywords {
		t.keywords[name] = lowerAll(terms)
	}

	// Longest key first so the most specific table entry wins a substring
	// match; equal lengths fall back to lexicographic order.
	t.sortedKeys = make([]string, 0, len(t.specificity))
	for k := range t.specificity {
		t.sortedKeys = append(t.sortedKeys, k)
	}
	sort.Slice(t.sortedKeys, func(i, j int) bool {
		a, b := t.sortedKeys[i], t.sortedKeys[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return t, nil
}

// MustLoad is Load for startup paths where a broken embedded table is a
// programming bug.
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, term := range terms {
		out[i] = strings.ToLower(term)
	}
	return out
}

// Specificity returns how concrete a label is as a subject descriptor,
// 0 (background filler) to 5 (named/branded object). The lookup is total:
// exact match first, then substring containment against the table keys,
// then a word-count heuristic for unknown terms.
func (t *Table) Specificity(term string) int {
	lower := strings.ToLower(strings.TrimSpace(term))
	if lower == "" {
		return t.fallback.OneWord
	}

	if level, ok := t.specificity[lower]; ok {
		return level
	}

	for _, key := range t.sortedKeys {
		if strings.Contains(lower, key) {
			return t.specificity[key]
		}
	}

	switch strings.Count(lower, " ") {
	case 0:
		return t.fallback.OneWord
	case 1:
		return t.fallback.TwoWords
	default:
		return t.fallback.ThreeOrMoreWords
	}
}

// RankingScore is the base comparability metric for a label from a single
// source: specificity times confidence.
func (t *Table) RankingScore(term string, confidence float64) float64 {
	return float64(t.Specificity(term)) * clamp01(confidence)
}

// IsClothingOrAccessory reports whether the term denotes a garment or
// accessory that would be misleading as a subject when a person is present.
func (t *Table) IsClothingOrAccessory(term string) bool {
	return containsAny(term, t.clothing)
}

// IsBackgroundObject reports whether a detection is scene filler that must
// never be promoted to a subject.
func (t *Table) IsBackgroundObject(term string) bool {
	return containsAny(term, t.background)
}

// IsVehicleTerm reports whether the term denotes a vehicle.
func (t *Table) IsVehicleTerm(term string) bool {
	return containsAny(term, t.vehicles)
}

// IsFoodTerm reports whether the term matches the food keyword set.
func (t *Table) IsFoodTerm(term string) bool { return t.matchesKeyword(term, "food") }

// IsProductTerm reports whether the term matches the product keyword set.
func (t *Table) IsProductTerm(term string) bool { return t.matchesKeyword(term, "product") }

// IsDocumentTerm reports whether the term denotes a document-shaped object.
func (t *Table) IsDocumentTerm(term string) bool { return t.matchesKeyword(term, "document") }

// IsUIChromeTerm reports whether the term denotes on-screen UI chrome.
func (t *Table) IsUIChromeTerm(term string) bool { return t.matchesKeyword(term, "ui_chrome") }

// IsNatureTerm reports whether the term denotes natural terrain.
func (t *Table) IsNatureTerm(term string) bool { return t.matchesKeyword(term, "nature") }

// IsAnimalTerm reports whether the term denotes wildlife.
func (t *Table) IsAnimalTerm(term string) bool { return t.matchesKeyword(term, "animal") }

// IsBuildingTerm reports whether the term denotes built architecture.
func (t *Table) IsBuildingTerm(term string) bool { return t.matchesKeyword(term, "building") }

func (t *Table) matchesKeyword(term, set string) bool {
	return containsAny(term, t.keywords[set])
}

// ConfidenceGate returns the minimum confidence a classification needs at
// the given specificity before it may become a subject candidate. Low
// specificity demands stronger evidence.
func (t *Table) ConfidenceGate(specificity int) float64 {
	if specificity >= 4 {
		if g, ok := t.ranking.ConfidenceGates["4"]; ok {
			return g
		}
	}
	if g, ok := t.ranking.ConfidenceGates[fmt.Sprintf("%d", specificity)]; ok {
		return g
	}
	return t.ranking.ConfidenceGates["default"]
}

// ConfidenceTier buckets a raw confidence into one of the four fixed tiers.
func (t *Table) ConfidenceTier(confidence float64) string {
	switch {
	case confidence >= t.tiers.High:
		return "high"
	case confidence >= t.tiers.Medium:
		return "medium"
	case confidence >= t.tiers.Low:
		return "low"
	default:
		return "minimum"
	}
}

// Ranking returns the ranking policy by value.
func (t *Table) Ranking() RankingPolicy { return t.ranking }

// Purpose returns the purpose detector policy by value.
func (t *Table) Purpose() PurposePolicy { return t.purpose }

// Quality returns the quality engine policy by value.
func (t *Table) Quality() QualityPolicy { return t.quality }

// WeightsFor returns the quality weight triple for a purpose, falling back
// to the default triple for unknown purposes.
func (t *Table) WeightsFor(purpose string) QualityWeights {
	if p, ok := t.quality.Purposes[purpose]; ok {
		return p.Weights
	}
	return t.quality.DefaultWeights
}

// ThresholdsFor returns the per-purpose issue thresholds, falling back to
// the general thresholds for unknown purposes.
func (t *Table) ThresholdsFor(purpose string) PurposeThresholds {
	if p, ok := t.quality.Purposes[purpose]; ok {
		return p
	}
	return t.quality.Purposes["general"]
}

func containsAny(term string, set []string) bool {
	lower := strings.ToLower(term)
	for _, s := range set {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
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
