package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arbormap/lineagebackend/models"
)

// NarrativeRepository handles database operations for cached AI narratives
type NarrativeRepository struct {
	DB *gorm.DB
}

// NewNarrativeRepository creates a new instance of NarrativeRepository
func NewNarrativeRepository(db *gorm.DB) *NarrativeRepository {
	return &NarrativeRepository{DB: db}
}

// GetByPersonAndKind retrieves the cached narrative for a person and kind
func (r *NarrativeRepository) GetByPersonAndKind(personID uint, kind string) (*models.Narrative, error) {
	var narrative models.Narrative
	err := r.DB.Where("person_id = ? AND kind = ?", personID, kind).First(&narrative).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get narrative for person %d kind %s: %w", personID, kind, err)
	}
	return &narrative, nil
}

// Upsert stores a narrative, replacing any previous one for the same
// person and kind.
func (r *NarrativeRepository) Upsert(narrative *models.Narrative) error {
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "person_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "model", "generated_at"}),
	}).Create(narrative).Error
	if err != nil {
		return fmt.Errorf("failed to upsert narrative for person %d kind %s: %w", narrative.PersonID, narrative.Kind, err)
	}
	return nil
}

// DeleteByPerson removes all cached narratives for a person, used when the
// person's facts change or the person is deleted.
func (r *NarrativeRepository) DeleteByPerson(personID uint) error {
	err := r.DB.Where("person_id = ?", personID).Delete(&models.Narrative{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete narratives for person %d: %w", personID, err)
	}
	return nil
}
