package models

// Gender values stored on a person record. Anything unrecognized is
// normalized to GenderUnknown at the API boundary.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderUnknown = "unknown"
)

// Person represents one individual in the family tree using GORM.
// It corresponds to the 'people' table. Parent links are denormalized
// foreign keys into the same table; a nil FatherID/MotherID means the
// parent is unrecorded, and a reference to a deleted person is tolerated
// and read as unrecorded by all consumers.
type Person struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
	Gender    string `gorm:"not null;default:unknown" json:"gender"`
	Country   string `json:"country,omitempty"`
	Notes     string `gorm:"type:text" json:"notes,omitempty"`

	FatherID *uint `gorm:"index" json:"father_id"`
	MotherID *uint `gorm:"index" json:"mother_id"`

	PhotoPath          *string `json:"photo_path,omitempty"`
	PhotoThumbnailPath *string `json:"photo_thumbnail_path,omitempty"`
	PhotoTakenAt       *int64  `json:"photo_taken_at,omitempty"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Unix timestamp, default ordering key
	UpdatedAt int64 `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// NormalizeGender maps arbitrary input onto the stored gender values.
func NormalizeGender(g string) string {
	switch g {
	case GenderMale, GenderFemale:
		return g
	default:
		return GenderUnknown
	}
}
