package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbormap/lineagebackend/genealogy"
	"github.com/arbormap/lineagebackend/models"
)

func TestGetStatistics(t *testing.T) {
	repo := newFakePersonRepo(
		models.Person{ID: 1, Name: "A", Gender: models.GenderMale, BirthYear: intPtr(1900), DeathYear: intPtr(1970)},
		models.Person{ID: 2, Name: "B", Gender: models.GenderFemale, BirthYear: intPtr(1905), DeathYear: intPtr(1985)},
	)
	handler := &StatsHandler{Repo: repo}

	req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
	rec := httptest.NewRecorder()
	handler.GetStatistics(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats genealogy.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalPeople)
	require.NotNil(t, stats.AverageLifespan)
	assert.InDelta(t, 75.0, *stats.AverageLifespan, 0.001)
	assert.Equal(t, 1, stats.GenderCounts[models.GenderMale])
	assert.Equal(t, 1, stats.GenderCounts[models.GenderFemale])
}

func TestGetStatisticsEmpty(t *testing.T) {
	handler := &StatsHandler{Repo: newFakePersonRepo()}

	req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
	rec := httptest.NewRecorder()
	handler.GetStatistics(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats genealogy.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.TotalPeople)
	assert.Nil(t, stats.AverageLifespan)
	assert.Nil(t, stats.AverageParentChildGap)
}
