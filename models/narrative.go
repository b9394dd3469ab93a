package models

// Narrative kinds produced by the AI narrator.
const (
	NarrativeHistoricalContext = "historical_context"
	NarrativeBiography         = "biography"
	NarrativeGapPrediction     = "gap_prediction"
)

// Narrative stores generated narrative text for a person so repeat views
// don't re-hit the upstream model. One row per (person, kind).
type Narrative struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PersonID    uint   `gorm:"not null;uniqueIndex:idx_person_kind" json:"person_id"`
	Kind        string `gorm:"not null;uniqueIndex:idx_person_kind" json:"kind"`
	Content     string `gorm:"type:text;not null" json:"content"`
	Model       string `json:"model"`
	GeneratedAt int64  `gorm:"not null" json:"generated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Narrative) TableName() string {
	return "narratives"
}

// ValidNarrativeKind reports whether kind is one of the supported kinds.
func ValidNarrativeKind(kind string) bool {
	switch kind {
	case NarrativeHistoricalContext, NarrativeBiography, NarrativeGapPrediction:
		return true
	}
	return false
}
