package handlers

import (
	"log"
	"net/http"

	"github.com/arbormap/lineagebackend/genealogy"
	"github.com/arbormap/lineagebackend/repository"
)

// StatsHandler serves aggregate statistics over the current snapshot.
type StatsHandler struct {
	Repo repository.PersonRepositoryInterface
}

func (sh *StatsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	people, err := sh.Repo.ListAll()
	if err != nil {
		log.Printf("Error listing people for statistics: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve people"})
		return
	}

	stats := genealogy.NewSnapshot(people).ComputeStatistics()
	writeJSON(w, http.StatusOK, stats)
}
