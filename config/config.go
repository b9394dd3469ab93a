package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultPortraitsSubDir  = "portraits"
	DefaultThumbnailsSubDir = "portrait_thumbnails"
)

const (
	defaultPortraitQueueSize  = 100
	defaultNumPortraitWorkers = 2
	defaultThumbnailMaxSize   = 300
	defaultJWTExpirationHours = 24
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for stored portraits and thumbnails
	PortraitsPath    string // full-calculated path for original portraits
	ThumbnailsPath   string // full-calculated path for generated thumbnails

	// thumbnail generation settings
	ThumbnailMaxSize int

	// worker settings
	PortraitQueueSize  int
	NumPortraitWorkers int

	// face detection model paths (DNN), used to center thumbnail crops
	FaceDNNNetConfigPath string
	FaceDNNNetModelPath  string

	// auth settings
	JWTSecret          string
	JWTExpirationHours int

	// narrative generation settings
	OpenAIAPIKey string
	OpenAIModel  string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "lineage.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	portraitSubDir := getEnvOrDefault("PORTRAITS_SUBDIR", DefaultPortraitsSubDir)
	absPortraitsPath := filepath.Join(absMediaStorage, portraitSubDir)

	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)
	absThumbnailsPath := filepath.Join(absMediaStorage, thumbSubDir)

	thumbMaxSize := getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize)

	queueSize := getEnvIntOrDefault("PORTRAIT_QUEUE_SIZE", defaultPortraitQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_PORTRAIT_WORKERS", defaultNumPortraitWorkers)

	faceDNNConfig := getEnvOrDefault("FACE_DNN_CONFIG_PATH", "./models/deploy.prototxt.txt")
	faceDNNModel := getEnvOrDefault("FACE_DNN_MODEL_PATH", "./models/res10_300x300_ssd_iter_140000_fp16.caffemodel")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	jwtExpiration := getEnvIntOrDefault("JWT_EXPIRATION_HOURS", defaultJWTExpirationHours)

	openAIKey := os.Getenv("OPENAI_API_KEY")
	openAIModel := getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini")
	if openAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, narrative generation will be unavailable")
	}

	cfg := Config{
		DatabasePath:         dbPath,
		MediaStoragePath:     absMediaStorage,
		PortraitsPath:        absPortraitsPath,
		ThumbnailsPath:       absThumbnailsPath,
		ThumbnailMaxSize:     thumbMaxSize,
		PortraitQueueSize:    queueSize,
		NumPortraitWorkers:   numWorkers,
		FaceDNNNetConfigPath: faceDNNConfig,
		FaceDNNNetModelPath:  faceDNNModel,
		JWTSecret:            jwtSecret,
		JWTExpirationHours:   jwtExpiration,
		OpenAIAPIKey:         openAIKey,
		OpenAIModel:          openAIModel,
	}

	return cfg, nil
}
