package timeline

import (
	"fmt"
	"time"

	"geotag/internal/geo"
)

// Source identifies where a position record came from.
type Source string

const (
	SourcePosition             Source = "POSITION"
	SourcePlaceAggregate       Source = "PLACE_AGGREGATE"
	SourceInterpolated         Source = "INTERPOLATED"
	SourceExisting             Source = "EXISTING"
	SourceExtensionPlaceholder Source = "EXTENSION_PLACEHOLDER"
	SourceImageEXIF            Source = "IMAGE_EXIF"
	SourceImageDerived         Source = "IMAGE_DERIVED"
)

// Record is a single immutable location fix. Placeholder records carry no
// coordinates; they exist only to mark the timeline's temporal extent for a
// cluster of images. Every non-placeholder record has a valid coordinate
// pair.
type Record struct {
	Timestamp   time.Time
	Latitude    float64
	Longitude   float64
	Accuracy    *float64 // meters
	Altitude    *float64 // meters
	Speed       *float64 // m/s
	Source      Source
	DeviceID    string
	Placeholder bool

	// Contributing images, set on placeholder records only.
	ImagePaths []string
	ImageNames []string
	ImageCount int
}

// Valid reports whether the record satisfies the coordinate invariant:
// placeholders carry no coordinates, everything else carries a valid pair.
func (r Record) Valid() bool {
	if r.Timestamp.IsZero() {
		return false
	}
	if r.Placeholder {
		return true
	}
	return geo.IsValidCoordinatePair(r.Latitude, r.Longitude)
}

// dedupKey builds the composite identity used when discarding duplicates:
// timestamp plus position rounded to six decimals, or a placeholder marker.
func (r Record) dedupKey() string {
	ts := r.Timestamp.UTC().Format(time.RFC3339Nano)
	if r.Placeholder {
		return ts + "|placeholder"
	}
	return fmt.Sprintf("%s|%.6f|%.6f", ts, r.Latitude, r.Longitude)
}

// parseTimestamp accepts the RFC3339 timestamp flavors seen in location
// history exports (with and without fractional seconds).
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

// FormatTimestamp renders a time in the document's canonical encoding.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
