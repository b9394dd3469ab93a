package media

import (
	"fmt"
	"image"
	"log"
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// GetPortraitMetadata extracts dimensions and the EXIF capture time from
// an uploaded portrait. Files without EXIF data (most scanned photos)
// still yield dimensions.
func GetPortraitMetadata(filePath string) (*PortraitMetadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	var width, height *int
	if err == nil {
		w, h := config.Width, config.Height
		width = &w
		height = &h
	} else {
		log.Printf("metadata: Warning - Could not decode config for dimensions of %s: %v", filePath, err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("metadata: failed to seek file %s: %w", filePath, err)
	}

	exifData, err := exif.Decode(file)
	if err != nil {
		// not necessarily a fatal error, file might just lack EXIF data
		return &PortraitMetadata{Width: width, Height: height}, nil
	}

	meta := &PortraitMetadata{Width: width, Height: height}
	if dt, err := exifData.DateTime(); err == nil {
		ts := dt.Unix()
		meta.TakenAt = &ts
	}
	return meta, nil
}
