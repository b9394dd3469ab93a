package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/arbormap/lineagebackend/genealogy"
	"github.com/arbormap/lineagebackend/repository"
)

// RelationshipHandler classifies how two persons relate over the current
// snapshot's parent graph.
type RelationshipHandler struct {
	Repo repository.PersonRepositoryInterface
}

// GetRelationship answers /api/relationship?from={id}&to={id}.
func (rh *RelationshipHandler) GetRelationship(w http.ResponseWriter, r *http.Request) {
	fromID, ok := parseQueryID(w, r, "from")
	if !ok {
		return
	}
	toID, ok := parseQueryID(w, r, "to")
	if !ok {
		return
	}

	people, err := rh.Repo.ListAll()
	if err != nil {
		log.Printf("Error listing people for relationship: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve people"})
		return
	}

	snapshot := genealogy.NewSnapshot(people)
	rel, err := snapshot.Classify(fromID, toID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, rel)
}

func parseQueryID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required query param: " + name})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid " + name + " ID format"})
		return 0, false
	}
	return uint(id), true
}
