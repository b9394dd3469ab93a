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

func TestGetRelationship(t *testing.T) {
	repo := newFakePersonRepo(
		models.Person{ID: 1, Name: "Grandfather", Gender: models.GenderMale},
		models.Person{ID: 2, Name: "Mother", Gender: models.GenderFemale, FatherID: uintPtr(1)},
		models.Person{ID: 3, Name: "Child", FatherID: nil, MotherID: uintPtr(2)},
	)
	handler := &RelationshipHandler{Repo: repo}

	// the label names how "to" relates to "from"
	req := httptest.NewRequest(http.MethodGet, "/api/relationship?from=3&to=1", nil)
	rec := httptest.NewRecorder()
	handler.GetRelationship(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rel genealogy.Relationship
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rel))
	assert.Equal(t, "Grandfather", rel.Label)
	assert.True(t, rel.Related)
}

func TestGetRelationshipUnrelated(t *testing.T) {
	repo := newFakePersonRepo(
		models.Person{ID: 1, Name: "A"},
		models.Person{ID: 2, Name: "B"},
	)
	handler := &RelationshipHandler{Repo: repo}

	req := httptest.NewRequest(http.MethodGet, "/api/relationship?from=1&to=2", nil)
	rec := httptest.NewRecorder()
	handler.GetRelationship(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rel genealogy.Relationship
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rel))
	assert.False(t, rel.Related)
	assert.Equal(t, "No blood relation found", rel.Label)
}

func TestGetRelationshipBadParams(t *testing.T) {
	handler := &RelationshipHandler{Repo: newFakePersonRepo()}

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing from", "/api/relationship?to=2", http.StatusBadRequest},
		{"missing to", "/api/relationship?from=1", http.StatusBadRequest},
		{"non-numeric", "/api/relationship?from=x&to=2", http.StatusBadRequest},
		{"unknown person", "/api/relationship?from=1&to=2", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			handler.GetRelationship(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
