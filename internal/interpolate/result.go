package interpolate

import (
	"math"

	"geotag/internal/geo"
	"geotag/internal/timeline"
)

// Source tags carried by result variants.
const (
	SourceTimelineDirect           = "timeline_direct"
	SourceTimelineInterpolated     = "timeline_interpolated"
	SourceImageInterpolated        = "image_interpolated"
	SourceImageInterpolatedRefined = "image_interpolated_refined"
)

// Result is an inferred coordinate with method-specific provenance. Each
// implementation is one inference method, discriminated by its source tag.
type Result interface {
	Source() string
	Coordinates() (lat, lon float64)
	Details() map[string]any
}

// TimelineDirect is a single timeline record close enough in time to use
// as-is.
type TimelineDirect struct {
	Latitude              float64
	Longitude             float64
	Record                timeline.Record
	TimeDifferenceMinutes float64
	FallbackUsed          bool
}

func (r TimelineDirect) Source() string { return SourceTimelineDirect }

func (r TimelineDirect) Coordinates() (float64, float64) { return r.Latitude, r.Longitude }

func (r TimelineDirect) Details() map[string]any {
	details := map[string]any{
		"recordTimestamp":       timeline.FormatTimestamp(r.Record.Timestamp),
		"recordSource":          string(r.Record.Source),
		"timeDifferenceMinutes": r.TimeDifferenceMinutes,
	}
	if r.Record.Accuracy != nil {
		details["accuracyMeters"] = *r.Record.Accuracy
	}
	if r.FallbackUsed {
		details["fallbackUsed"] = true
	}
	return details
}

// TimelineInterpolated is a linear blend between two records bracketing the
// image timestamp.
type TimelineInterpolated struct {
	Latitude              float64
	Longitude             float64
	Before                timeline.Record
	After                 timeline.Record
	Factor                float64
	TimeDifferenceMinutes float64
}

func (r TimelineInterpolated) Source() string { return SourceTimelineInterpolated }

func (r TimelineInterpolated) Coordinates() (float64, float64) { return r.Latitude, r.Longitude }

func (r TimelineInterpolated) Details() map[string]any {
	return map[string]any{
		"beforeTimestamp":       timeline.FormatTimestamp(r.Before.Timestamp),
		"afterTimestamp":        timeline.FormatTimestamp(r.After.Timestamp),
		"factor":                r.Factor,
		"timeDifferenceMinutes": r.TimeDifferenceMinutes,
	}
}

// CandidateImage records one sibling photo's contribution to an image-based
// result.
type CandidateImage struct {
	FilePath       string  `json:"filePath"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	TemporalWeight float64 `json:"temporalWeight"`
	SpatialWeight  float64 `json:"spatialWeight,omitempty"`
	CombinedWeight float64 `json:"combinedWeight,omitempty"`
	DistanceMeters float64 `json:"distanceMeters,omitempty"`
}

// ImageInterpolated is the provisional weighted average over nearby
// geotagged photos, used when spatial refinement finds no candidates.
type ImageInterpolated struct {
	Latitude   float64
	Longitude  float64
	Confidence float64
	Candidates []CandidateImage
}

func (r ImageInterpolated) Source() string { return SourceImageInterpolated }

func (r ImageInterpolated) Coordinates() (float64, float64) { return r.Latitude, r.Longitude }

func (r ImageInterpolated) Details() map[string]any {
	return map[string]any{
		"confidence": r.Confidence,
		"candidates": r.Candidates,
	}
}

// ImageInterpolatedRefined is the spatially refined weighted average: the
// provisional candidate set filtered to a radius around the provisional
// centroid and re-weighted by combined temporal and spatial proximity.
type ImageInterpolatedRefined struct {
	Latitude     float64
	Longitude    float64
	Confidence   float64
	RadiusMeters float64
	Candidates   []CandidateImage
}

func (r ImageInterpolatedRefined) Source() string { return SourceImageInterpolatedRefined }

func (r ImageInterpolatedRefined) Coordinates() (float64, float64) { return r.Latitude, r.Longitude }

func (r ImageInterpolatedRefined) Details() map[string]any {
	return map[string]any{
		"confidence":   r.Confidence,
		"radiusMeters": r.RadiusMeters,
		"candidates":   r.Candidates,
	}
}

// Validate gates every candidate result: coordinates must be finite and in
// range and the source tag must be recognized. An invalid result is treated
// identically to a failed attempt.
func Validate(result Result) bool {
	if result == nil {
		return false
	}
	lat, lon := result.Coordinates()
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	if !geo.IsValidCoordinatePair(lat, lon) {
		return false
	}
	switch result.Source() {
	case SourceTimelineDirect, SourceTimelineInterpolated,
		SourceImageInterpolated, SourceImageInterpolatedRefined:
		return true
	default:
		return false
	}
}
