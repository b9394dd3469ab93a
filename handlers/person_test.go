package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbormap/lineagebackend/models"
)

func newPersonRouter(repo *fakePersonRepo, narratives *fakeNarrativeRepo) *chi.Mux {
	handler := &PersonHandler{Repo: repo, Narratives: narratives}
	r := chi.NewRouter()
	r.Post("/api/people", handler.CreatePerson)
	r.Get("/api/people", handler.ListPeople)
	r.Get("/api/people/search", handler.SearchPeople)
	r.Get("/api/people/{person_id}", handler.GetPerson)
	r.Put("/api/people/{person_id}", handler.UpdatePerson)
	r.Delete("/api/people/{person_id}", handler.DeletePerson)
	return r
}

func TestCreatePerson(t *testing.T) {
	repo := newFakePersonRepo()
	router := newPersonRouter(repo, newFakeNarrativeRepo())

	body := `{"name": "  Arthur Pendragon ", "birth_year": 1890, "gender": "M", "country": "Wales"}`
	req := httptest.NewRequest(http.MethodPost, "/api/people", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Arthur Pendragon", created.Name, "name should be trimmed")
	assert.Equal(t, models.GenderMale, created.Gender, "gender should be normalized")
	require.NotNil(t, created.BirthYear)
	assert.Equal(t, 1890, *created.BirthYear)
	assert.NotZero(t, created.ID)
}

func TestCreatePersonRequiresName(t *testing.T) {
	router := newPersonRouter(newFakePersonRepo(), newFakeNarrativeRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/people", bytes.NewBufferString(`{"name": "   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPeopleNaturalOrder(t *testing.T) {
	repo := newFakePersonRepo(
		models.Person{ID: 1, Name: "Wilhelm X"},
		models.Person{ID: 2, Name: "Wilhelm II"},
		models.Person{ID: 3, Name: "Wilhelm IX"},
	)
	router := newPersonRouter(repo, newFakeNarrativeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var people []models.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
	require.Len(t, people, 3)
	assert.Equal(t, "Wilhelm II", people[0].Name)
	assert.Equal(t, "Wilhelm IX", people[1].Name)
	assert.Equal(t, "Wilhelm X", people[2].Name)
}

func TestUpdatePersonRejectsAncestorCycle(t *testing.T) {
	// grandparent 1 -> parent 2 -> child 3
	repo := newFakePersonRepo(
		models.Person{ID: 1, Name: "Grandparent"},
		models.Person{ID: 2, Name: "Parent", FatherID: uintPtr(1)},
		models.Person{ID: 3, Name: "Child", FatherID: uintPtr(2)},
	)
	router := newPersonRouter(repo, newFakeNarrativeRepo())

	// making the grandchild the grandparent's father closes a loop
	req := httptest.NewRequest(http.MethodPut, "/api/people/1", bytes.NewBufferString(`{"father_id": 3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	unchanged, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.Nil(t, unchanged.FatherID, "rejected update must not be persisted")
}

func TestUpdatePersonAllowsValidParent(t *testing.T) {
	repo := newFakePersonRepo(
		models.Person{ID: 1, Name: "Parent"},
		models.Person{ID: 2, Name: "Child"},
	)
	narratives := newFakeNarrativeRepo()
	require.NoError(t, narratives.Upsert(&models.Narrative{PersonID: 2, Kind: models.NarrativeBiography, Content: "stale"}))
	router := newPersonRouter(repo, narratives)

	req := httptest.NewRequest(http.MethodPut, "/api/people/2", bytes.NewBufferString(`{"father_id": 1, "country": "Ireland"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := repo.GetByID(2)
	require.NoError(t, err)
	require.NotNil(t, updated.FatherID)
	assert.Equal(t, uint(1), *updated.FatherID)
	assert.Equal(t, "Ireland", updated.Country)

	_, err = narratives.GetByPersonAndKind(2, models.NarrativeBiography)
	assert.Error(t, err, "cached narratives should be cleared after an update")
}

func TestUpdatePersonClearsParentWithNull(t *testing.T) {
	repo := newFakePersonRepo(
		models.Person{ID: 1, Name: "Parent"},
		models.Person{ID: 2, Name: "Child", FatherID: uintPtr(1)},
	)
	router := newPersonRouter(repo, newFakeNarrativeRepo())

	req := httptest.NewRequest(http.MethodPut, "/api/people/2", bytes.NewBufferString(`{"father_id": null}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := repo.GetByID(2)
	require.NoError(t, err)
	assert.Nil(t, updated.FatherID)
}

func TestUpdatePersonNotFound(t *testing.T) {
	router := newPersonRouter(newFakePersonRepo(), newFakeNarrativeRepo())

	req := httptest.NewRequest(http.MethodPut, "/api/people/42", bytes.NewBufferString(`{"name": "Nobody"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePerson(t *testing.T) {
	repo := newFakePersonRepo(models.Person{ID: 1, Name: "Ephemeral"})
	router := newPersonRouter(repo, newFakeNarrativeRepo())

	req := httptest.NewRequest(http.MethodDelete, "/api/people/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := repo.GetByID(1)
	assert.Error(t, err)
}

func TestSearchPeopleFilters(t *testing.T) {
	repo := newFakePersonRepo(
		models.Person{ID: 1, Name: "John Smith", Country: "Ireland", BirthYear: intPtr(1900)},
		models.Person{ID: 2, Name: "John Doe", Country: "France", BirthYear: intPtr(1950)},
		models.Person{ID: 3, Name: "Jane Smith", Country: "Ireland", BirthYear: intPtr(1980)},
	)
	router := newPersonRouter(repo, newFakeNarrativeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/people/search?name=smith&country=Ireland&born_after=1950", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var people []models.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
	require.Len(t, people, 1)
	assert.Equal(t, "Jane Smith", people[0].Name)
}

func TestSearchPeopleInvalidYear(t *testing.T) {
	router := newPersonRouter(newFakePersonRepo(), newFakeNarrativeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/people/search?born_after=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
