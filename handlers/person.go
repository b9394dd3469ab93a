package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/arbormap/lineagebackend/genealogy"
	"github.com/arbormap/lineagebackend/models"
	"github.com/arbormap/lineagebackend/realtime"
	"github.com/arbormap/lineagebackend/repository"
)

type PersonHandler struct {
	Repo       repository.PersonRepositoryInterface
	Narratives repository.NarrativeRepositoryInterface
	Hub        *realtime.Hub
}

type createPersonRequest struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
	Gender    string `json:"gender"`
	Country   string `json:"country"`
	Notes     string `json:"notes"`
	FatherID  *uint  `json:"father_id"`
	MotherID  *uint  `json:"mother_id"`
}

func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: name"})
		return
	}

	person := models.Person{
		Name:      strings.TrimSpace(req.Name),
		BirthYear: req.BirthYear,
		DeathYear: req.DeathYear,
		Gender:    models.NormalizeGender(req.Gender),
		Country:   req.Country,
		Notes:     req.Notes,
		FatherID:  req.FatherID,
		MotherID:  req.MotherID,
	}

	if err := ph.Repo.Create(&person); err != nil {
		log.Printf("Error creating person '%s': %v", req.Name, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create person"})
		return
	}

	if ph.Hub != nil {
		ph.Hub.NotifyPerson(realtime.EventPersonCreated, person.ID)
	}
	writeJSON(w, http.StatusCreated, person)
}

func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := ph.Repo.ListAll()
	if err != nil {
		log.Printf("Error listing people: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve people"})
		return
	}
	if people == nil {
		people = []models.Person{}
	}

	// natural-sort by name so "Wilhelm II" sorts before "Wilhelm X"
	sort.SliceStable(people, func(i, j int) bool {
		return natsort.Compare(people[i].Name, people[j].Name)
	})

	writeJSON(w, http.StatusOK, people)
}

func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	person, err := ph.Repo.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error getting person %d: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve person"})
		}
		return
	}

	writeJSON(w, http.StatusOK, person)
}

// UpdatePerson applies a partial update. Parent-link changes are routed
// through the cycle guard before anything is persisted; a change that
// would make the person their own ancestor is rejected with 409.
func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	if _, err := ph.Repo.GetByID(personID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error checking person %d before update: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to verify person"})
		}
		return
	}

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	updates, parentChanges, errMsg := buildPersonUpdates(fields)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}
	if len(updates) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No updatable fields in request"})
		return
	}

	if len(parentChanges) > 0 {
		people, err := ph.Repo.ListAll()
		if err != nil {
			log.Printf("Error loading people for cycle check: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to validate parent change"})
			return
		}
		snapshot := genealogy.NewSnapshot(people)
		for _, parentID := range parentChanges {
			if genealogy.WouldCreateCycle(snapshot, personID, parentID) {
				writeJSON(w, http.StatusConflict, map[string]string{
					"error": "Assigning this parent would make the person their own ancestor",
				})
				return
			}
		}
	}

	if err := ph.Repo.Update(personID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error updating person %d: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update person"})
		}
		return
	}

	// facts changed, cached narratives are stale
	if ph.Narratives != nil {
		if err := ph.Narratives.DeleteByPerson(personID); err != nil {
			log.Printf("Error clearing narratives for person %d: %v", personID, err)
		}
	}

	updatedPerson, err := ph.Repo.GetByID(personID)
	if err != nil {
		log.Printf("Error fetching updated person %d: %v", personID, err)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Person updated successfully"})
		return
	}

	if ph.Hub != nil {
		ph.Hub.NotifyPerson(realtime.EventPersonUpdated, personID)
	}
	writeJSON(w, http.StatusOK, updatedPerson)
}

func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	err := ph.Repo.Delete(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error deleting person %d: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete person"})
		}
		return
	}

	if ph.Narratives != nil {
		if err := ph.Narratives.DeleteByPerson(personID); err != nil {
			log.Printf("Error clearing narratives for deleted person %d: %v", personID, err)
		}
	}

	if ph.Hub != nil {
		ph.Hub.NotifyPerson(realtime.EventPersonDeleted, personID)
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (ph *PersonHandler) SearchPeople(w http.ResponseWriter, r *http.Request) {
	opts := repository.PersonSearchOptions{
		NameContains: r.URL.Query().Get("name"),
		Country:      r.URL.Query().Get("country"),
	}
	if g := r.URL.Query().Get("gender"); g != "" {
		opts.Gender = models.NormalizeGender(g)
	}
	if v := r.URL.Query().Get("born_after"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid born_after value"})
			return
		}
		opts.BornAfter = &year
	}
	if v := r.URL.Query().Get("born_before"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid born_before value"})
			return
		}
		opts.BornBefore = &year
	}

	people, err := ph.Repo.Search(opts)
	if err != nil {
		log.Printf("Error searching people: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to search people"})
		return
	}
	if people == nil {
		people = []models.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

// buildPersonUpdates translates a raw JSON patch into repository column
// updates. Returns the parent ids being assigned (for the cycle guard)
// and a non-empty message on invalid input.
func buildPersonUpdates(fields map[string]json.RawMessage) (map[string]interface{}, []uint, string) {
	updates := map[string]interface{}{}
	var parentChanges []uint

	for key, raw := range fields {
		switch key {
		case "name":
			var name string
			if err := json.Unmarshal(raw, &name); err != nil || strings.TrimSpace(name) == "" {
				return nil, nil, "Field 'name' must be a non-empty string"
			}
			updates["name"] = strings.TrimSpace(name)
		case "birth_year", "death_year":
			var year *int
			if err := json.Unmarshal(raw, &year); err != nil {
				return nil, nil, "Field '" + key + "' must be an integer or null"
			}
			updates[key] = year
		case "gender":
			var gender string
			if err := json.Unmarshal(raw, &gender); err != nil {
				return nil, nil, "Field 'gender' must be a string"
			}
			updates["gender"] = models.NormalizeGender(gender)
		case "country", "notes":
			var val string
			if err := json.Unmarshal(raw, &val); err != nil {
				return nil, nil, "Field '" + key + "' must be a string"
			}
			updates[key] = val
		case "father_id", "mother_id":
			var id *uint
			if err := json.Unmarshal(raw, &id); err != nil {
				return nil, nil, "Field '" + key + "' must be a person id or null"
			}
			updates[key] = id
			if id != nil {
				parentChanges = append(parentChanges, *id)
			}
		default:
			// ignore unknown fields, including read-only ones like id
		}
	}
	return updates, parentChanges, ""
}

func parsePersonID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "person_id")
	personID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid person ID format"})
		return 0, false
	}
	return uint(personID), true
}
