package handlers

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/arbormap/lineagebackend/models"
	"github.com/arbormap/lineagebackend/repository"
)

// fakePersonRepo is an in-memory PersonRepositoryInterface used to
// exercise handlers without a database.
type fakePersonRepo struct {
	people map[uint]*models.Person
	nextID uint
}

func newFakePersonRepo(seed ...models.Person) *fakePersonRepo {
	repo := &fakePersonRepo{people: map[uint]*models.Person{}, nextID: 1}
	for i := range seed {
		p := seed[i]
		repo.people[p.ID] = &p
		if p.ID >= repo.nextID {
			repo.nextID = p.ID + 1
		}
	}
	return repo
}

func (f *fakePersonRepo) Create(person *models.Person) error {
	person.ID = f.nextID
	f.nextID++
	copied := *person
	f.people[person.ID] = &copied
	return nil
}

func (f *fakePersonRepo) GetByID(id uint) (*models.Person, error) {
	person, ok := f.people[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *person
	return &copied, nil
}

func (f *fakePersonRepo) ListAll() ([]models.Person, error) {
	ids := make([]uint, 0, len(f.people))
	for id := range f.people {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Person, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.people[id])
	}
	return out, nil
}

func (f *fakePersonRepo) Update(id uint, updates map[string]interface{}) error {
	person, ok := f.people[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, val := range updates {
		switch key {
		case "name":
			person.Name = val.(string)
		case "birth_year":
			person.BirthYear = val.(*int)
		case "death_year":
			person.DeathYear = val.(*int)
		case "gender":
			person.Gender = val.(string)
		case "country":
			person.Country = val.(string)
		case "notes":
			person.Notes = val.(string)
		case "father_id":
			person.FatherID = val.(*uint)
		case "mother_id":
			person.MotherID = val.(*uint)
		}
	}
	return nil
}

func (f *fakePersonRepo) Delete(id uint) error {
	if _, ok := f.people[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.people, id)
	return nil
}

func (f *fakePersonRepo) UpdatePhotoPaths(id uint, photoPath, thumbnailPath *string, takenAt *int64) error {
	person, ok := f.people[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	person.PhotoPath = photoPath
	person.PhotoThumbnailPath = thumbnailPath
	person.PhotoTakenAt = takenAt
	return nil
}

func (f *fakePersonRepo) Search(opts repository.PersonSearchOptions) ([]models.Person, error) {
	all, _ := f.ListAll()
	var out []models.Person
	for _, p := range all {
		if opts.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(opts.NameContains)) {
			continue
		}
		if opts.Country != "" && p.Country != opts.Country {
			continue
		}
		if opts.Gender != "" && p.Gender != opts.Gender {
			continue
		}
		if opts.BornAfter != nil && (p.BirthYear == nil || *p.BirthYear < *opts.BornAfter) {
			continue
		}
		if opts.BornBefore != nil && (p.BirthYear == nil || *p.BirthYear > *opts.BornBefore) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type narrativeKey struct {
	personID uint
	kind     string
}

type fakeNarrativeRepo struct {
	narratives map[narrativeKey]*models.Narrative
}

func newFakeNarrativeRepo() *fakeNarrativeRepo {
	return &fakeNarrativeRepo{narratives: map[narrativeKey]*models.Narrative{}}
}

func (f *fakeNarrativeRepo) GetByPersonAndKind(personID uint, kind string) (*models.Narrative, error) {
	narrative, ok := f.narratives[narrativeKey{personID, kind}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *narrative
	return &copied, nil
}

func (f *fakeNarrativeRepo) Upsert(narrative *models.Narrative) error {
	copied := *narrative
	f.narratives[narrativeKey{narrative.PersonID, narrative.Kind}] = &copied
	return nil
}

func (f *fakeNarrativeRepo) DeleteByPerson(personID uint) error {
	for key := range f.narratives {
		if key.personID == personID {
			delete(f.narratives, key)
		}
	}
	return nil
}

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) CountAll() (int64, error) {
	return int64(len(f.users)), nil
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }
