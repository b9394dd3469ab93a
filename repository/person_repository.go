package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/arbormap/lineagebackend/database"
	"github.com/arbormap/lineagebackend/models"
)

// PersonRepository handles database operations for Person entities
type PersonRepository struct {
	DB *gorm.DB
}

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// Create creates a new person record in the database
func (r *PersonRepository) Create(person *models.Person) error {
	now := time.Now().Unix()
	if person.CreatedAt == 0 {
		person.CreatedAt = now
	}
	if person.UpdatedAt == 0 {
		person.UpdatedAt = now
	}

	err := r.DB.Create(person).Error
	if err != nil {
		return fmt.Errorf("failed to create person %s: %w", person.Name, err)
	}
	return nil
}

// GetByID retrieves a person by their ID
func (r *PersonRepository) GetByID(id uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// ListAll retrieves the full person list, ordered by creation time. The
// genealogy snapshot is built from exactly this list.
func (r *PersonRepository) ListAll() ([]models.Person, error) {
	var people []models.Person
	err := r.DB.Order("created_at ASC, id ASC").Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// Update applies a partial field update to an existing person. The map
// keys are column names; nil values clear nullable columns (e.g. removing
// a parent link).
func (r *PersonRepository) Update(id uint, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().Unix()
	result := r.DB.Model(&models.Person{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update person ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a person by their ID. No cascade: children keep their
// now-dangling parent reference, which readers treat as unrecorded.
func (r *PersonRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Person{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete person ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePhotoPaths records the stored portrait, its generated thumbnail,
// and the EXIF capture time after the portrait worker finishes.
func (r *PersonRepository) UpdatePhotoPaths(id uint, photoPath, thumbnailPath *string, takenAt *int64) error {
	updates := map[string]interface{}{
		"photo_path":           photoPath,
		"photo_thumbnail_path": thumbnailPath,
		"photo_taken_at":       takenAt,
		"updated_at":           time.Now().Unix(),
	}
	result := r.DB.Model(&models.Person{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update photo paths for person ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Search runs the squirrel-built dynamic filter query against the
// underlying sql.DB.
func (r *PersonRepository) Search(opts PersonSearchOptions) ([]models.Person, error) {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB for search: %w", err)
	}
	return database.SearchPeople(sqlDB, database.PersonSearchOptions{
		NameContains: opts.NameContains,
		Country:      opts.Country,
		BornAfter:    opts.BornAfter,
		BornBefore:   opts.BornBefore,
		Gender:       opts.Gender,
	})
}
