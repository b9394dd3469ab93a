package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/arbormap/lineagebackend/ai"
	"github.com/arbormap/lineagebackend/genealogy"
	"github.com/arbormap/lineagebackend/models"
	"github.com/arbormap/lineagebackend/realtime"
	"github.com/arbormap/lineagebackend/repository"
)

// NarrativeHandler serves AI-generated narrative content for a person,
// cached in the database per (person, kind).
type NarrativeHandler struct {
	People     repository.PersonRepositoryInterface
	Narratives repository.NarrativeRepositoryInterface
	Narrator   ai.Narrator
	Hub        *realtime.Hub
}

// GetNarrative answers /api/people/{person_id}/narrative/{kind}. The
// cached copy is returned unless refresh=1 forces regeneration.
func (nh *NarrativeHandler) GetNarrative(w http.ResponseWriter, r *http.Request) {
	personID, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	kind := chi.URLParam(r, "kind")
	if !models.ValidNarrativeKind(kind) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown narrative kind: " + kind})
		return
	}

	person, err := nh.People.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error getting person %d for narrative: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve person"})
		}
		return
	}

	refresh := r.URL.Query().Get("refresh") == "1"
	if !refresh {
		cached, err := nh.Narratives.GetByPersonAndKind(personID, kind)
		if err == nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error reading cached narrative for person %d: %v", personID, err)
		}
	}

	if nh.Narrator == nil {
		WriteAPIError(w, http.StatusServiceUnavailable, "narration_unavailable",
			"Narrative generation is not configured")
		return
	}

	// hand the model the recorded parents so it can anchor the story
	var parents []models.Person
	if people, err := nh.People.ListAll(); err == nil {
		snapshot := genealogy.NewSnapshot(people)
		for _, parent := range snapshot.Parents(personID) {
			parents = append(parents, *parent)
		}
	} else {
		log.Printf("Error listing people for narrative context: %v", err)
	}

	content, err := nh.Narrator.Generate(r.Context(), kind, *person, parents)
	if err != nil {
		log.Printf("Narrative generation failed for person %d kind %s: %v", personID, kind, err)
		WriteAPIError(w, http.StatusBadGateway, "narration_failed",
			"The narrative model could not be reached")
		return
	}

	narrative := &models.Narrative{
		PersonID:    personID,
		Kind:        kind,
		Content:     content,
		Model:       nh.Narrator.Model(),
		GeneratedAt: time.Now().Unix(),
	}
	if err := nh.Narratives.Upsert(narrative); err != nil {
		// serve the fresh content even if caching failed
		log.Printf("Error caching narrative for person %d: %v", personID, err)
	}

	if nh.Hub != nil {
		nh.Hub.Broadcast(realtime.Event{
			Type:     realtime.EventNarrativeGenerated,
			PersonID: personID,
			Kind:     kind,
		})
	}
	writeJSON(w, http.StatusOK, narrative)
}
