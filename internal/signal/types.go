// Package signal defines the typed perception outputs consumed by the
// analysis pipeline and the consolidated entities it produces.
// Everything here is an immutable value object created fresh per analysis
// request; nothing is mutated in place or persisted.
package signal

// Classification is a single label emitted by an image classifier.
type Classification struct {
	Identifier string  `json:"identifier"`
	Confidence float64 `json:"confidence"` // normalized to 0-1
}

// DetectedObject is one localized detection instance. The identifier may
// denote "person", "face", or an object class.
type DetectedObject struct {
	Identifier  string      `json:"identifier"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// SceneClassification is a whole-image scene tag (e.g., "outdoor", "beach").
type SceneClassification struct {
	Identifier string  `json:"identifier"`
	Confidence float64 `json:"confidence"`
}

// TextObservation is a single recognized text item from OCR.
type TextObservation struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// RecognizedPerson is a named-person recognition.
type RecognizedPerson struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// AttentionPoint is a single visual-attention sample from the saliency map.
type AttentionPoint struct {
	Location  Point   `json:"location"`
	Intensity float64 `json:"intensity"`
}

// SaliencyAnalysis describes where a saliency generator believes the eye is
// drawn. It may be absent for an image; callers pass nil in that case.
type SaliencyAnalysis struct {
	AttentionPoints []AttentionPoint `json:"attention_points"`
	VisualBalance   VisualBalance    `json:"visual_balance"`
}

// VisualBalance scores how well-composed the image is (0-1).
type VisualBalance struct {
	Score float64 `json:"score"`
}

// Signals bundles every per-source perception output for a single image.
// Any list may be empty and Saliency may be nil; the pipeline degrades to
// zero-candidate contributions rather than failing.
type Signals struct {
	Classifications   []Classification      `json:"classifications"`
	Objects           []DetectedObject      `json:"objects"`
	Scenes            []SceneClassification `json:"scenes"`
	TextObservations  []TextObservation     `json:"text_observations"`
	RecognizedPersons []RecognizedPerson    `json:"recognized_persons"`
	Saliency          *SaliencyAnalysis     `json:"saliency,omitempty"`

	// Pixel dimensions of the source image, used for resolution tiering.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SubjectSource identifies which perception source produced a subject.
type SubjectSource string

const (
	SourceRecognizedFace SubjectSource = "recognizedFace"
	SourceDetectedObject SubjectSource = "detectedObject"
	SourceClassification SubjectSource = "classification"
	SourceScene          SubjectSource = "scene"
)

// PrimarySubject is a ranked, source-attributed description of what the
// image is of. At most two survive validation.
type PrimarySubject struct {
	Label       string        `json:"label"`
	Confidence  float64       `json:"confidence"`
	Source      SubjectSource `json:"source"`
	Detail      string        `json:"detail,omitempty"`
	BoundingBox *BoundingBox  `json:"bounding_box,omitempty"`
}

// ImagePurpose is the categorical judgment of the image's intended genre.
type ImagePurpose string

const (
	PurposePortrait     ImagePurpose = "portrait"
	PurposeGroupPhoto   ImagePurpose = "groupPhoto"
	PurposeFood         ImagePurpose = "food"
	PurposeProductPhoto ImagePurpose = "productPhoto"
	PurposeDocument     ImagePurpose = "document"
	PurposeScreenshot   ImagePurpose = "screenshot"
	PurposeLandscape    ImagePurpose = "landscape"
	PurposeArchitecture ImagePurpose = "architecture"
	PurposeWildlife     ImagePurpose = "wildlife"
	PurposeGeneral      ImagePurpose = "general"
)

// QualityTier buckets the overall quality score.
type QualityTier string

const (
	TierLow     QualityTier = "low"
	TierMedium  QualityTier = "medium"
	TierHigh    QualityTier = "high"
	TierUnknown QualityTier = "unknown"
)

// QualityMetrics holds the raw measured values behind an assessment.
type QualityMetrics struct {
	Megapixels float64 `json:"megapixels"`
	Sharpness  float64 `json:"sharpness"` // 0-1
	Exposure   float64 `json:"exposure"`  // 0-1, 0.5 is optimal
	Luminance  float64 `json:"luminance"` // 0-1
}

// IssueKind identifies a class of quality problem.
type IssueKind string

const (
	IssueSoftFocus     IssueKind = "softFocus"
	IssueUnderexposed  IssueKind = "underexposed"
	IssueOverexposed   IssueKind = "overexposed"
	IssueLowResolution IssueKind = "lowResolution"
)

// QualityIssue is one human-readable diagnostic.
type QualityIssue struct {
	Kind   IssueKind `json:"kind"`
	Title  string    `json:"title"`
	Detail string    `json:"detail"`
}

// QualityAssessment is the purpose-aware quality judgment for an image.
type QualityAssessment struct {
	Quality QualityTier    `json:"quality"`
	Summary string         `json:"summary"`
	Issues  []QualityIssue `json:"issues"`
	Metrics QualityMetrics `json:"metrics"`
	Purpose ImagePurpose   `json:"purpose"`
}

// Result is the consolidated output of one analysis request: ranked
// subjects, a purpose, and a purpose-aware quality assessment.
type Result struct {
	Subjects []PrimarySubject  `json:"subjects"`
	Purpose  ImagePurpose      `json:"purpose"`
	Quality  QualityAssessment `json:"quality"`
}
