package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/arbormap/lineagebackend/ai"
	"github.com/arbormap/lineagebackend/config"
	"github.com/arbormap/lineagebackend/database"
	"github.com/arbormap/lineagebackend/handlers"
	"github.com/arbormap/lineagebackend/media"
	"github.com/arbormap/lineagebackend/realtime"
	"github.com/arbormap/lineagebackend/repository"
	"github.com/arbormap/lineagebackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.PortraitsPath, cfg.ThumbnailsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypePortrait:  filepath.Base(cfg.PortraitsPath),
		media.AssetTypeThumbnail: filepath.Base(cfg.ThumbnailsPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}

	faceDetector := media.NewDNNFaceDetector(cfg.FaceDNNNetConfigPath, cfg.FaceDNNNetModelPath)

	personRepo := repository.NewPersonRepository(db)
	userRepo := repository.NewUserRepository(db)
	narrativeRepo := repository.NewNarrativeRepository(db)

	hub := realtime.NewHub()
	go hub.Run()

	log.Printf("Initializing portrait worker pool (Workers: %d, Queue Size: %d)...", cfg.NumPortraitWorkers, cfg.PortraitQueueSize)
	portraitProcessor := workers.NewPortraitProcessor(cfg, personRepo, mediaStore, faceDetector, hub, cfg.PortraitQueueSize, cfg.NumPortraitWorkers)
	defer portraitProcessor.Stop()

	var narrator ai.Narrator
	if cfg.OpenAIAPIKey != "" {
		client, err := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize narrative client: %v", err)
		}
		narrator = client
	} else {
		log.Printf("Narrative generation disabled: no API key configured")
	}

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing portraits in: %s", cfg.PortraitsPath)
	log.Printf("Thumbnail max size (longest side): %dpx", cfg.ThumbnailMaxSize)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	personHandler := &handlers.PersonHandler{Repo: personRepo, Narratives: narrativeRepo, Hub: hub}
	photoHandler := &handlers.PhotoHandler{People: personRepo, Store: mediaStore, Processor: portraitProcessor}
	treeHandler := &handlers.TreeHandler{Repo: personRepo}
	relationshipHandler := &handlers.RelationshipHandler{Repo: personRepo}
	anomalyHandler := &handlers.AnomalyHandler{Repo: personRepo}
	statsHandler := &handlers.StatsHandler{Repo: personRepo}
	narrativeHandler := &handlers.NarrativeHandler{People: personRepo, Narratives: narrativeRepo, Narrator: narrator, Hub: hub}

	requireAuth := handlers.AuthMiddleware(userRepo, []byte(cfg.JWTSecret))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(requireAuth).Get("/me", authHandler.CurrentUser)
		})

		r.Route("/people", func(r chi.Router) {
			r.Get("/", personHandler.ListPeople)
			r.Get("/search", personHandler.SearchPeople)
			r.With(requireAuth).Post("/", personHandler.CreatePerson)
			r.Route("/{person_id}", func(r chi.Router) {
				r.Get("/", personHandler.GetPerson)
				r.With(requireAuth).Put("/", personHandler.UpdatePerson)
				r.With(requireAuth).Delete("/", personHandler.DeletePerson)
				r.With(requireAuth).Put("/photo", photoHandler.UploadPortrait)
				r.With(requireAuth).Delete("/photo", photoHandler.DeletePortrait)
				r.Get("/narrative/{kind}", narrativeHandler.GetNarrative)
			})
		})

		r.Get("/tree", treeHandler.GetTree)
		r.Get("/relationship", relationshipHandler.GetRelationship)
		r.Get("/anomalies", anomalyHandler.GetAnomalies)
		r.Get("/statistics", statsHandler.GetStatistics)

		portraitSubDir := filepath.Base(cfg.PortraitsPath)
		r.Get(fmt.Sprintf("/%s/*", portraitSubDir), handlers.AssetServer(cfg.MediaStoragePath, portraitSubDir))
		log.Printf("Registered portrait server at /%s/*", portraitSubDir)

		thumbnailSubDir := filepath.Base(cfg.ThumbnailsPath)
		r.Get(fmt.Sprintf("/%s/*", thumbnailSubDir), handlers.AssetServer(cfg.MediaStoragePath, thumbnailSubDir))
		log.Printf("Registered thumbnail server at /%s/*", thumbnailSubDir)
	})

	r.Get("/ws", hub.ServeWS)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		// narrative generation is synchronous and can take a while
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
