package media

type AssetType string

const (
	AssetTypePortrait  AssetType = "portrait"
	AssetTypeThumbnail AssetType = "thumbnail"
	AssetTypeUnknown   AssetType = "unknown"
)

// PortraitMetadata carries what the domain keeps from an uploaded
// portrait's EXIF block: dimensions and capture time. Old scans rarely
// have more.
type PortraitMetadata struct {
	Width   *int   `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
	TakenAt *int64 `json:"taken_at,omitempty"`
}

// DetectionResult is one detected face rectangle in image coordinates.
type DetectionResult struct {
	X          int
	Y          int
	W          int
	H          int
	Confidence float32
}
