package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbormap/lineagebackend/models"
)

type fakeNarrator struct {
	calls int
	fail  bool
}

func (f *fakeNarrator) Generate(ctx context.Context, kind string, person models.Person, parents []models.Person) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("upstream unavailable")
	}
	return fmt.Sprintf("generated %s for %s", kind, person.Name), nil
}

func (f *fakeNarrator) Model() string { return "fake-model" }

func newNarrativeRouter(people *fakePersonRepo, narratives *fakeNarrativeRepo, narrator *fakeNarrator) *chi.Mux {
	handler := &NarrativeHandler{People: people, Narratives: narratives}
	if narrator != nil {
		handler.Narrator = narrator
	}
	r := chi.NewRouter()
	r.Get("/api/people/{person_id}/narrative/{kind}", handler.GetNarrative)
	return r
}

func TestGetNarrativeGeneratesAndCaches(t *testing.T) {
	people := newFakePersonRepo(models.Person{ID: 1, Name: "Arthur", BirthYear: intPtr(1890)})
	narratives := newFakeNarrativeRepo()
	narrator := &fakeNarrator{}
	router := newNarrativeRouter(people, narratives, narrator)

	req := httptest.NewRequest(http.MethodGet, "/api/people/1/narrative/biography", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, narrator.calls)

	var narrative models.Narrative
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &narrative))
	assert.Equal(t, "generated biography for Arthur", narrative.Content)
	assert.Equal(t, "fake-model", narrative.Model)

	// second request must come from the cache
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/api/people/1/narrative/biography", nil))
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, 1, narrator.calls)
}

func TestGetNarrativeRefreshRegenerates(t *testing.T) {
	people := newFakePersonRepo(models.Person{ID: 1, Name: "Arthur"})
	narrator := &fakeNarrator{}
	router := newNarrativeRouter(people, newFakeNarrativeRepo(), narrator)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/people/1/narrative/biography", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/people/1/narrative/biography?refresh=1", nil))

	assert.Equal(t, 2, narrator.calls)
}

func TestGetNarrativeUnknownKind(t *testing.T) {
	people := newFakePersonRepo(models.Person{ID: 1, Name: "Arthur"})
	router := newNarrativeRouter(people, newFakeNarrativeRepo(), &fakeNarrator{})

	req := httptest.NewRequest(http.MethodGet, "/api/people/1/narrative/horoscope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNarrativeUpstreamFailure(t *testing.T) {
	people := newFakePersonRepo(models.Person{ID: 1, Name: "Arthur"})
	router := newNarrativeRouter(people, newFakeNarrativeRepo(), &fakeNarrator{fail: true})

	req := httptest.NewRequest(http.MethodGet, "/api/people/1/narrative/biography", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "narration_failed", resp.Errors[0].Code)
}

func TestGetNarrativeNotConfigured(t *testing.T) {
	people := newFakePersonRepo(models.Person{ID: 1, Name: "Arthur"})
	router := newNarrativeRouter(people, newFakeNarrativeRepo(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/people/1/narrative/biography", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetNarrativeServesCachedAfterNarratorLoss(t *testing.T) {
	// a cached narrative stays readable even if narration is later
	// unconfigured
	people := newFakePersonRepo(models.Person{ID: 1, Name: "Arthur"})
	narratives := newFakeNarrativeRepo()
	require.NoError(t, narratives.Upsert(&models.Narrative{
		PersonID: 1,
		Kind:     models.NarrativeBiography,
		Content:  "from an earlier run",
	}))
	router := newNarrativeRouter(people, narratives, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/people/1/narrative/biography", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var narrative models.Narrative
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &narrative))
	assert.Equal(t, "from an earlier run", narrative.Content)
}
