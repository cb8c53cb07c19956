package augment

import (
	"math"
	"time"

	"geotag/internal/config"
	"geotag/internal/geo"
	"geotag/internal/timeline"
)

// duplicateClass is the verdict for one candidate against the existing
// timeline.
type duplicateClass int

const (
	classNew duplicateClass = iota
	classExact
	classProximity
)

// classifyPosition checks a coordinate-bearing candidate against existing
// records. Exact always wins over proximity: a candidate inside both
// threshold pairs is exact. Placeholder records carry no coordinates and
// never match a position candidate.
func classifyPosition(cand timeline.Record, existing []timeline.Record, opts config.Augmentation) duplicateClass {
	for _, rec := range existing {
		if rec.Placeholder {
			continue
		}
		if withinThresholds(cand, rec, opts.ExactTimeToleranceMinutes, opts.ExactDistanceMeters) {
			return classExact
		}
	}
	for _, rec := range existing {
		if rec.Placeholder {
			continue
		}
		if withinThresholds(cand, rec, opts.ProximityTimeToleranceMinutes, opts.ProximityDistanceMeters) {
			return classProximity
		}
	}
	return classNew
}

// placeholderBlocked reports whether any existing record, placeholder or not,
// sits within the exact time tolerance of the candidate timestamp.
// Coordinate-free candidates compare by time alone.
func placeholderBlocked(ts time.Time, existing []timeline.Record, opts config.Augmentation) bool {
	tolerance := opts.ExactTimeToleranceMinutes
	for _, rec := range existing {
		if minutesApart(ts, rec.Timestamp) <= tolerance {
			return true
		}
	}
	return false
}

func withinThresholds(cand, rec timeline.Record, toleranceMinutes, distanceMeters float64) bool {
	if minutesApart(cand.Timestamp, rec.Timestamp) > toleranceMinutes {
		return false
	}
	dist := geo.HaversineDistance(cand.Latitude, cand.Longitude, rec.Latitude, rec.Longitude)
	return dist <= distanceMeters
}

func minutesApart(a, b time.Time) float64 {
	return math.Abs(a.Sub(b).Minutes())
}
