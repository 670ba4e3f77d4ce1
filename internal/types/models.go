package types

// MediaKind distinguishes the two capture formats the pipelines accept.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// MediaAsset is the raw captured clip. It is immutable once captured and
// owned by exactly one pipeline run; a retake replaces it wholesale.
type MediaAsset struct {
	Data []byte    `json:"-"`
	Mime string    `json:"mime"`
	Kind MediaKind `json:"kind"`
}

// Empty reports whether there is no captured payload.
func (m MediaAsset) Empty() bool {
	return len(m.Data) == 0
}

// LocationInfo is supplied once per session by the (external) geolocation
// resolver and is read-only to the pipelines.
type LocationInfo struct {
	City          string `json:"city"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
	LocalLanguage string `json:"local_language"`
}

// SosReport is the structured emergency report extracted from the clip.
type SosReport struct {
	Context         string   `json:"context"`
	LocationDetails string   `json:"location_details"`
	DangerType      string   `json:"danger_type"`
	UserNeeds       []string `json:"user_needs"`
}

// FirstAidStep pairs one instruction with its illustration. Image is a data
// URI, or empty when image synthesis failed for that step.
type FirstAidStep struct {
	Instruction string `json:"instruction"`
	Image       string `json:"image"`
}

// GeneratedContent is the aggregate result of a completed emergency run.
// It is created only on full pipeline success.
type GeneratedContent struct {
	SosReport       *SosReport     `json:"sos_report"`
	FullTranslation string         `json:"full_translation"`
	FirstAidSteps   []FirstAidStep `json:"first_aid_steps"`
}

// NewsContent is the aggregate result of a completed news run.
type NewsContent struct {
	Summary     string         `json:"summary"`
	Segments    []TimedSegment `json:"segments"`
	DubbedAudio []byte         `json:"-"`
}

// RunToken identifies one pipeline execution. Tokens increase monotonically;
// a result whose token no longer matches the active run is discarded.
type RunToken uint64
