package interpolate

import (
	"context"
	"math"
	"time"

	"geotag/internal/imagemeta"
	"geotag/internal/timeline"
)

// TimelineResolver infers coordinates from the location-history timeline.
// When records bracket the image timestamp on both sides within tolerance it
// interpolates between them rather than snapping to the nearer endpoint; a
// one-sided or exact-time match within tolerance is used directly. Failing
// both, it brackets within twice the tolerance, and finally, when enabled,
// runs the escalating fallback search over wider windows.
type TimelineResolver struct {
	Store *timeline.Store

	// ToleranceMinutes bounds the direct match; bracketing uses twice this
	// value on each side.
	ToleranceMinutes float64

	// UseFallback enables the escalating closest-record search after both
	// the direct match and bracketing fail.
	UseFallback      bool
	MaxFallbackHours float64
	Unbounded        bool
}

func (r *TimelineResolver) Name() string { return "timeline" }

func (r *TimelineResolver) Resolve(_ context.Context, img *imagemeta.ImageMetadata) (Result, error) {
	if r.Store == nil || img.Timestamp == nil {
		return nil, nil
	}
	target := *img.Timestamp

	if before, after := r.Store.Bracket(target, r.ToleranceMinutes); before != nil && after != nil {
		if before.Timestamp.Equal(target) {
			return directResult(*before, target), nil
		}
		return r.interpolated(*before, *after, target)
	}

	if rec := r.Store.FindClosestRecord(target, r.ToleranceMinutes); rec != nil {
		return directResult(*rec, target), nil
	}

	if before, after := r.Store.Bracket(target, 2*r.ToleranceMinutes); before != nil && after != nil {
		return r.interpolated(*before, *after, target)
	}

	if r.UseFallback {
		match := r.Store.FindClosestRecordWithFallback(target, r.ToleranceMinutes, r.MaxFallbackHours, r.Unbounded)
		if match != nil {
			return TimelineDirect{
				Latitude:              match.Record.Latitude,
				Longitude:             match.Record.Longitude,
				Record:                match.Record,
				TimeDifferenceMinutes: match.TimeDifferenceMinutes,
				FallbackUsed:          match.FallbackUsed,
			}, nil
		}
	}
	return nil, nil
}

func (r *TimelineResolver) interpolated(before, after timeline.Record, target time.Time) (Result, error) {
	blended, err := timeline.Interpolate(before, after, target)
	if err != nil {
		return nil, err
	}
	diff := math.Min(
		math.Abs(target.Sub(before.Timestamp).Minutes()),
		math.Abs(after.Timestamp.Sub(target).Minutes()),
	)
	return TimelineInterpolated{
		Latitude:              blended.Latitude,
		Longitude:             blended.Longitude,
		Before:                before,
		After:                 after,
		Factor:                timeline.InterpolationFactor(before, after, target),
		TimeDifferenceMinutes: diff,
	}, nil
}

func directResult(rec timeline.Record, target time.Time) TimelineDirect {
	return TimelineDirect{
		Latitude:              rec.Latitude,
		Longitude:             rec.Longitude,
		Record:                rec,
		TimeDifferenceMinutes: math.Abs(target.Sub(rec.Timestamp).Minutes()),
	}
}
