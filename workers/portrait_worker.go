package workers

import (
	"log"
	"sync"

	"github.com/arbormap/lineagebackend/config"
	"github.com/arbormap/lineagebackend/media"
	"github.com/arbormap/lineagebackend/realtime"
	"github.com/arbormap/lineagebackend/repository"
)

// PortraitJob asks for post-upload processing of one stored portrait:
// face-centered thumbnail, EXIF capture time, and the DB/photo-path
// update once both are done.
type PortraitJob struct {
	PersonID        uint
	PortraitRelPath string
}

// PortraitProcessor runs a small worker pool over uploaded portraits so
// the upload request itself returns as soon as the original is stored.
type PortraitProcessor struct {
	JobQueue chan PortraitJob
	Config   config.Config
	People   repository.PersonRepositoryInterface
	Store    media.Store
	Detector *media.DNNFaceDetector
	Hub      *realtime.Hub
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[uint]bool
	Mutex    sync.Mutex
}

func NewPortraitProcessor(cfg config.Config, people repository.PersonRepositoryInterface, store media.Store, detector *media.DNNFaceDetector, hub *realtime.Hub, queueSize, numWorkers int) *PortraitProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	pp := &PortraitProcessor{
		JobQueue: make(chan PortraitJob, queueSize),
		Config:   cfg,
		People:   people,
		Store:    store,
		Detector: detector,
		Hub:      hub,
		StopChan: make(chan struct{}),
		Pending:  make(map[uint]bool),
	}

	pp.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go pp.worker(i)
	}
	log.Printf("started %d portrait worker(s) with queue size %d", numWorkers, queueSize)

	return pp
}

func (pp *PortraitProcessor) worker(id int) {
	defer pp.Wg.Done()
	log.Printf("portrait worker %d started", id)
	for {
		select {
		case job, ok := <-pp.JobQueue:
			if !ok {
				log.Printf("portrait worker %d stopping: job queue closed", id)
				return
			}
			log.Printf("worker %d processing portrait for person %d", id, job.PersonID)
			pp.processJob(job)
			pp.Mutex.Lock()
			delete(pp.Pending, job.PersonID)
			pp.Mutex.Unlock()

		case <-pp.StopChan:
			log.Printf("portrait worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (pp *PortraitProcessor) processJob(job PortraitJob) {
	fullPath, err := pp.Store.GetFullPath(job.PortraitRelPath)
	if err != nil {
		log.Printf("ERROR resolving portrait path %s: %v", job.PortraitRelPath, err)
		return
	}

	face, err := media.DetectLargestFace(fullPath, pp.Detector)
	if err != nil {
		// fall back to a center crop, the thumbnail is still useful
		log.Printf("face detection failed for %s: %v", job.PortraitRelPath, err)
	}

	thumbRelPath, err := media.GenerateThumbnail(pp.Store, job.PortraitRelPath, pp.Config.ThumbnailMaxSize, face)
	if err != nil {
		log.Printf("ERROR generating thumbnail for person %d (%s): %v", job.PersonID, job.PortraitRelPath, err)
		return
	}

	var takenAt *int64
	meta, err := media.GetPortraitMetadata(fullPath)
	if err != nil {
		log.Printf("metadata extraction failed for %s: %v", job.PortraitRelPath, err)
	} else if meta != nil {
		takenAt = meta.TakenAt
	}

	portraitPath := job.PortraitRelPath
	if err := pp.People.UpdatePhotoPaths(job.PersonID, &portraitPath, &thumbRelPath, takenAt); err != nil {
		log.Printf("ERROR updating photo record for person %d after processing: %v", job.PersonID, err)
		return
	}

	if pp.Hub != nil {
		pp.Hub.NotifyPerson(realtime.EventPhotoProcessed, job.PersonID)
	}
	log.Printf("successfully processed portrait for person %d", job.PersonID)
}

// QueueJob enqueues processing for a person's portrait, deduplicating
// jobs already pending for the same person.
func (pp *PortraitProcessor) QueueJob(job PortraitJob) bool {
	pp.Mutex.Lock()
	if pp.Pending[job.PersonID] {
		pp.Mutex.Unlock()
		log.Printf("portrait processing for person %d already pending, skipping queue", job.PersonID)
		return false
	}

	pp.Pending[job.PersonID] = true
	pp.Mutex.Unlock()

	select {
	case pp.JobQueue <- job:
		log.Printf("queued portrait processing for person %d", job.PersonID)
		return true
	default:
		log.Printf("WARNING: portrait job queue full, failed to queue job for person %d", job.PersonID)
		pp.Mutex.Lock()
		delete(pp.Pending, job.PersonID)
		pp.Mutex.Unlock()
		return false
	}
}

func (pp *PortraitProcessor) Stop() {
	log.Println("stopping portrait processor...")
	close(pp.StopChan)
	pp.Wg.Wait()
	log.Println("all portrait workers stopped")
}
