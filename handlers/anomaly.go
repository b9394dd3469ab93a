package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/arbormap/lineagebackend/genealogy"
	"github.com/arbormap/lineagebackend/repository"
)

// AnomalyHandler reports data-quality issues found in the current
// snapshot.
type AnomalyHandler struct {
	Repo repository.PersonRepositoryInterface
}

type anomalyResponse struct {
	Anomalies  []genealogy.Anomaly        `json:"anomalies"`
	Duplicates []genealogy.DuplicateGroup `json:"duplicates"`
}

// GetAnomalies runs the scanner and duplicate detection over the full
// person list.
func (ah *AnomalyHandler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	people, err := ah.Repo.ListAll()
	if err != nil {
		log.Printf("Error listing people for anomaly scan: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve people"})
		return
	}

	snapshot := genealogy.NewSnapshot(people)
	resp := anomalyResponse{
		Anomalies:  snapshot.ScanAnomalies(time.Now().Year()),
		Duplicates: snapshot.FindDuplicates(),
	}
	writeJSON(w, http.StatusOK, resp)
}
