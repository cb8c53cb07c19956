package gpsstore

import "time"

// Source identifies how a GPS record was resolved, in strict priority order.
type Source string

const (
	SourceDatabase             Source = "DATABASE"
	SourceExifGPS              Source = "EXIF_GPS"
	SourceTimelineInterpolated Source = "TIMELINE_INTERPOLATED"
	SourceNearbyInterpolated   Source = "NEARBY_INTERPOLATED"
)

// Rank orders sources; higher outranks lower. Unknown sources rank below
// everything so they never displace a stored record.
func (s Source) Rank() int {
	switch s {
	case SourceDatabase:
		return 4
	case SourceExifGPS:
		return 3
	case SourceTimelineInterpolated:
		return 2
	case SourceNearbyInterpolated:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the source is one of the recognized tags.
func (s Source) Valid() bool {
	return s.Rank() > 0
}

// Confidence grades how trustworthy a stored coordinate is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ConfidenceForSource derives the confidence grade deterministically from the
// source. DATABASE records inherit the prior confidence; prior is ignored for
// every other source.
func ConfidenceForSource(source Source, prior Confidence) Confidence {
	switch source {
	case SourceExifGPS:
		return ConfidenceHigh
	case SourceTimelineInterpolated:
		return ConfidenceMedium
	case SourceNearbyInterpolated:
		return ConfidenceLow
	case SourceDatabase:
		if prior != "" {
			return prior
		}
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Coordinates is the stored fix.
type Coordinates struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Bearing   *float64 `json:"bearing,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// Record is one durable memo of resolved GPS for a file, keyed by absolute
// path.
type Record struct {
	FilePath    string         `json:"filePath"`
	Coordinates Coordinates    `json:"coordinates"`
	Source      Source         `json:"source"`
	Confidence  Confidence     `json:"confidence"`
	Details     map[string]any `json:"interpolationDetails,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
