package imagemeta

import (
	"context"
	"time"

	"geotag/internal/geo"
)

// GPS is a coordinate fix attached to an image.
type GPS struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// Valid reports whether the fix has a usable coordinate pair.
func (g GPS) Valid() bool {
	return geo.IsValidCoordinatePair(g.Latitude, g.Longitude)
}

// ImageMetadata captures the per-file facts needed for geolocation
// inference. FilePath is the natural key. The GPS field is filled in during a
// run as coordinates are discovered; the struct itself is not persisted.
type ImageMetadata struct {
	FilePath          string     `json:"filePath"`
	FileName          string     `json:"fileName"`
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	HasValidTimestamp bool       `json:"hasValidTimestamp"`
	HasGPSCoordinates bool       `json:"hasGpsCoordinates"`
	GPS               *GPS       `json:"gps,omitempty"`
}

// NeedsGeolocation reports whether the image is a candidate for inference:
// it has a usable timestamp but no coordinates yet.
func (m *ImageMetadata) NeedsGeolocation() bool {
	return !m.HasGPSCoordinates && m.HasValidTimestamp
}

// SetGPS records a discovered fix on the in-memory metadata.
func (m *ImageMetadata) SetGPS(gps GPS) {
	m.GPS = &gps
	m.HasGPSCoordinates = true
}

// Scanner discovers image files beneath a root directory.
type Scanner interface {
	Discover(ctx context.Context, root string) ([]string, error)
}

// Reader extracts metadata for a single image file.
type Reader interface {
	ExtractMetadata(ctx context.Context, path string) (*ImageMetadata, error)
}

// GPSWriter persists a coordinate fix into an image file's metadata.
type GPSWriter interface {
	WriteGPS(ctx context.Context, path string, gps GPS) error
}

// NopGPSWriter discards writes. Used for dry runs.
type NopGPSWriter struct{}

func (NopGPSWriter) WriteGPS(context.Context, string, GPS) error { return nil }
