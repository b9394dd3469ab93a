package handlers

import (
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/arbormap/lineagebackend/media"
	"github.com/arbormap/lineagebackend/repository"
	"github.com/arbormap/lineagebackend/workers"
)

const maxPortraitUploadBytes = 20 << 20 // 20 MiB

// PhotoHandler accepts portrait uploads for a person. The original is
// stored synchronously; thumbnailing, face detection, and EXIF
// extraction happen on the worker pool.
type PhotoHandler struct {
	People    repository.PersonRepositoryInterface
	Store     media.Store
	Processor *workers.PortraitProcessor
}

// UploadPortrait handles PUT /api/people/{person_id}/photo with a
// multipart "photo" field.
func (h *PhotoHandler) UploadPortrait(w http.ResponseWriter, r *http.Request) {
	personID, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	person, err := h.People.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error getting person %d for photo upload: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve person"})
		}
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPortraitUploadBytes)
	if err := r.ParseMultipartForm(maxPortraitUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart form: " + err.Error()})
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required file field: photo"})
		return
	}
	defer file.Close()

	relPath, err := media.SavePortrait(h.Store, file)
	if err != nil {
		log.Printf("Error saving portrait for person %d: %v", personID, err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Could not process uploaded image"})
		return
	}

	// the previous portrait, if any, is replaced
	if person.PhotoPath != nil && *person.PhotoPath != relPath {
		if err := h.Store.Delete(*person.PhotoPath); err != nil {
			log.Printf("Error deleting old portrait %s: %v", *person.PhotoPath, err)
		}
	}
	if person.PhotoThumbnailPath != nil {
		if err := h.Store.Delete(*person.PhotoThumbnailPath); err != nil {
			log.Printf("Error deleting old thumbnail %s: %v", *person.PhotoThumbnailPath, err)
		}
	}

	// record the original right away; thumbnail and EXIF land when the
	// worker finishes and fires photo.processed
	if err := h.People.UpdatePhotoPaths(personID, &relPath, nil, nil); err != nil {
		log.Printf("Error recording portrait path for person %d: %v", personID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to record portrait"})
		return
	}

	h.Processor.QueueJob(workers.PortraitJob{PersonID: personID, PortraitRelPath: relPath})

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":    "Portrait stored, processing queued",
		"photo_path": relPath,
	})
}

// DeletePortrait removes a person's stored portrait and thumbnail.
func (h *PhotoHandler) DeletePortrait(w http.ResponseWriter, r *http.Request) {
	personID, ok := parsePersonID(w, r)
	if !ok {
		return
	}

	person, err := h.People.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error getting person %d for photo delete: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve person"})
		}
		return
	}

	if person.PhotoPath != nil {
		if err := h.Store.Delete(*person.PhotoPath); err != nil {
			log.Printf("Error deleting portrait %s: %v", *person.PhotoPath, err)
		}
	}
	if person.PhotoThumbnailPath != nil {
		if err := h.Store.Delete(*person.PhotoThumbnailPath); err != nil {
			log.Printf("Error deleting thumbnail %s: %v", *person.PhotoThumbnailPath, err)
		}
	}

	if err := h.People.UpdatePhotoPaths(personID, nil, nil, nil); err != nil {
		log.Printf("Error clearing portrait paths for person %d: %v", personID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to clear portrait"})
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
