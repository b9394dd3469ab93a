package media

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"

	"github.com/disintegration/imaging"

	// register decoders for image.Decode on common upload formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	PortraitMaxWidth      = 1600
	PortraitJpegQuality   = 85
	PortraitFileExtension = ".jpg"
	// faceCropMargin widens the detected face box so crops include hair
	// and shoulders instead of a tight mugshot
	faceCropMargin = 0.6
)

// SavePortrait decodes uploaded file data, normalizes it to a bounded
// JPEG, and stores it under a UUID filename. Returns the stored relative
// path.
func SavePortrait(store Store, fileData io.Reader) (string, error) {
	img, format, err := image.Decode(fileData)
	if err != nil {
		return "", fmt.Errorf("failed to decode uploaded portrait image: %w", err)
	}
	log.Printf("media.portrait: decoded uploaded portrait (format: %s)", format)

	if img.Bounds().Dx() > PortraitMaxWidth {
		img = imaging.Resize(img, PortraitMaxWidth, 0, imaging.Lanczos)
	}

	return encodeAndSave(store, AssetTypePortrait, img)
}

// GenerateThumbnail produces a square thumbnail for a stored portrait.
// When a face rectangle is supplied the crop is centered on it (with
// margin); otherwise the crop falls back to the image center.
func GenerateThumbnail(store Store, portraitRelPath string, maxSize int, face *DetectionResult) (string, error) {
	fullPath, err := store.GetFullPath(portraitRelPath)
	if err != nil {
		return "", err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to open portrait %s: %w", portraitRelPath, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode portrait %s: %w", portraitRelPath, err)
	}

	var cropped image.Image
	if face != nil {
		cropped = imaging.Crop(img, expandFaceRect(img.Bounds(), face))
	} else {
		side := minDim(img.Bounds())
		cropped = imaging.CropCenter(img, side, side)
	}

	thumb := imaging.Fit(cropped, maxSize, maxSize, imaging.Lanczos)
	return encodeAndSave(store, AssetTypeThumbnail, thumb)
}

func encodeAndSave(store Store, assetType AssetType, img image.Image) (string, error) {
	pr, pw := io.Pipe()
	go func() {
		err := imaging.Encode(pw, img, imaging.JPEG, imaging.JPEGQuality(PortraitJpegQuality))
		pw.CloseWithError(err)
	}()
	relPath, err := store.Save(assetType, "", PortraitFileExtension, pr)
	if err != nil {
		return "", fmt.Errorf("failed to save %s asset: %w", assetType, err)
	}
	return relPath, nil
}

// expandFaceRect grows the face box by the crop margin, squares it, and
// clamps it to the image bounds.
func expandFaceRect(bounds image.Rectangle, face *DetectionResult) image.Rectangle {
	cx := face.X + face.W/2
	cy := face.Y + face.H/2
	side := int(float64(maxIntDim(face.W, face.H)) * (1 + 2*faceCropMargin))
	if side > minDim(bounds) {
		side = minDim(bounds)
	}

	x0 := cx - side/2
	y0 := cy - side/2
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	if y0 < bounds.Min.Y {
		y0 = bounds.Min.Y
	}
	if x0+side > bounds.Max.X {
		x0 = bounds.Max.X - side
	}
	if y0+side > bounds.Max.Y {
		y0 = bounds.Max.Y - side
	}
	return image.Rect(x0, y0, x0+side, y0+side)
}

func minDim(r image.Rectangle) int {
	if r.Dx() < r.Dy() {
		return r.Dx()
	}
	return r.Dy()
}

func maxIntDim(a, b int) int {
	if a > b {
		return a
	}
	return b
}
