package repository

import (
	"github.com/arbormap/lineagebackend/models"
)

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	Create(person *models.Person) error
	GetByID(id uint) (*models.Person, error)
	ListAll() ([]models.Person, error)
	Update(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	UpdatePhotoPaths(id uint, photoPath, thumbnailPath *string, takenAt *int64) error
	Search(opts PersonSearchOptions) ([]models.Person, error)
}

// PersonSearchOptions mirrors the dynamic filters accepted by the search
// query (see database.SearchPeople).
type PersonSearchOptions struct {
	NameContains string
	Country      string
	BornAfter    *int
	BornBefore   *int
	Gender       string
}

// UserRepositoryInterface defines the methods for user data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	CountAll() (int64, error)
}

// NarrativeRepositoryInterface defines the methods for cached narrative operations
type NarrativeRepositoryInterface interface {
	GetByPersonAndKind(personID uint, kind string) (*models.Narrative, error)
	Upsert(narrative *models.Narrative) error
	DeleteByPerson(personID uint) error
}
