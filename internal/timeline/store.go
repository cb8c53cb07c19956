package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"
)

// ErrInterpolationOrder indicates Interpolate was called with records that do
// not bracket the target timestamp.
var ErrInterpolationOrder = errors.New("interpolation requires before <= target <= after")

// Escalation windows, in minutes, tried in order by the fallback search
// before the configured maximum.
var fallbackWindowsMinutes = []float64{60, 360, 1440}

// Store holds an immutable, time-sorted snapshot of timeline records and
// answers nearest-match and range queries.
type Store struct {
	records []Record
}

// NewStore wraps an already extracted record set. The slice must be sorted
// ascending by timestamp, as ExtractRecords produces.
func NewStore(records []Record) *Store {
	return &Store{records: records}
}

// LoadStore reads and parses a timeline file into a queryable store. A
// missing file yields an empty store rather than an error so callers can
// start from nothing.
func LoadStore(path string, logger *slog.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewStore(nil), nil
		}
		return nil, fmt.Errorf("read timeline file: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return NewStore(ExtractRecords(doc, logger)), nil
}

// Records returns the underlying snapshot. Callers must not mutate it.
func (s *Store) Records() []Record {
	if s == nil {
		return nil
	}
	return s.records
}

// Len returns the number of records in the snapshot.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// FindClosestRecord returns the non-placeholder record nearest in time to
// target, provided the gap is at most toleranceMinutes (inclusive). Equal
// distances resolve to the earlier record.
func (s *Store) FindClosestRecord(target time.Time, toleranceMinutes float64) *Record {
	return s.closestWithin(target, time.Duration(toleranceMinutes*float64(time.Minute)))
}

// closestWithin implements the bounded nearest search. A negative tolerance
// means unbounded.
func (s *Store) closestWithin(target time.Time, tolerance time.Duration) *Record {
	if s == nil || len(s.records) == 0 {
		return nil
	}

	var best *Record
	var bestDelta time.Duration
	for i := range s.records {
		rec := &s.records[i]
		if rec.Placeholder {
			continue
		}
		delta := absDuration(rec.Timestamp.Sub(target))
		if tolerance >= 0 && delta > tolerance {
			continue
		}
		// Strict < keeps the earlier record on equal deltas.
		if best == nil || delta < bestDelta {
			best = rec
			bestDelta = delta
		}
	}
	if best == nil {
		return nil
	}
	found := *best
	return &found
}

// FallbackMatch describes the outcome of an escalating closest-record search.
type FallbackMatch struct {
	Record                 Record
	FallbackUsed           bool
	FallbackToleranceHours float64
	TimeDifferenceMinutes  float64
}

// FindClosestRecordWithFallback tries the initial tolerance first, then
// escalates through fixed windows of 60, 360, and 1440 minutes and finally
// maxToleranceHours, stopping at the first window that yields a candidate.
// When unbounded is true and every window fails, a final search with no time
// bound runs; by default that capability is disabled because a match across
// an extreme gap assigns a confidently wrong location.
func (s *Store) FindClosestRecordWithFallback(target time.Time, initialToleranceMinutes, maxToleranceHours float64, unbounded bool) *FallbackMatch {
	if rec := s.FindClosestRecord(target, initialToleranceMinutes); rec != nil {
		return &FallbackMatch{
			Record:                *rec,
			TimeDifferenceMinutes: minutesBetween(rec.Timestamp, target),
		}
	}

	windows := append([]float64{}, fallbackWindowsMinutes...)
	windows = append(windows, maxToleranceHours*60)
	for _, window := range windows {
		if window <= initialToleranceMinutes {
			continue
		}
		if rec := s.FindClosestRecord(target, window); rec != nil {
			return &FallbackMatch{
				Record:                 *rec,
				FallbackUsed:           true,
				FallbackToleranceHours: window / 60,
				TimeDifferenceMinutes:  minutesBetween(rec.Timestamp, target),
			}
		}
	}

	if unbounded {
		if rec := s.closestWithin(target, -1); rec != nil {
			return &FallbackMatch{
				Record:                 *rec,
				FallbackUsed:           true,
				FallbackToleranceHours: math.Inf(1),
				TimeDifferenceMinutes:  minutesBetween(rec.Timestamp, target),
			}
		}
	}
	return nil
}

// Bracket returns the nearest non-placeholder records on either side of
// target, each within windowMinutes. Either side may be nil.
func (s *Store) Bracket(target time.Time, windowMinutes float64) (before, after *Record) {
	if s == nil {
		return nil, nil
	}
	window := time.Duration(windowMinutes * float64(time.Minute))
	for i := range s.records {
		rec := &s.records[i]
		if rec.Placeholder {
			continue
		}
		delta := rec.Timestamp.Sub(target)
		switch {
		case delta <= 0:
			if -delta <= window && (before == nil || rec.Timestamp.After(before.Timestamp)) {
				cp := *rec
				before = &cp
			}
		default:
			if delta <= window && (after == nil || rec.Timestamp.Before(after.Timestamp)) {
				cp := *rec
				after = &cp
			}
		}
	}
	return before, after
}

// Interpolate produces a linearly blended record between two fixes that
// bracket the target timestamp. Accuracy, altitude, and speed are not
// propagated.
func Interpolate(before, after Record, target time.Time) (Record, error) {
	if before.Placeholder || after.Placeholder {
		return Record{}, fmt.Errorf("interpolate: placeholder records carry no coordinates")
	}
	if target.Before(before.Timestamp) || target.After(after.Timestamp) {
		return Record{}, ErrInterpolationOrder
	}

	span := after.Timestamp.Sub(before.Timestamp)
	factor := 0.0
	if span > 0 {
		factor = float64(target.Sub(before.Timestamp)) / float64(span)
	}

	return Record{
		Timestamp: target,
		Latitude:  before.Latitude + (after.Latitude-before.Latitude)*factor,
		Longitude: before.Longitude + (after.Longitude-before.Longitude)*factor,
		Source:    SourceInterpolated,
	}, nil
}

// InterpolationFactor reports the blend factor Interpolate would use, for
// provenance reporting.
func InterpolationFactor(before, after Record, target time.Time) float64 {
	span := after.Timestamp.Sub(before.Timestamp)
	if span <= 0 {
		return 0
	}
	return float64(target.Sub(before.Timestamp)) / float64(span)
}

// RecordsInRange returns the records with timestamps in [from, to],
// inclusive.
func (s *Store) RecordsInRange(from, to time.Time) []Record {
	if s == nil || len(s.records) == 0 {
		return nil
	}
	start := sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].Timestamp.Before(from)
	})
	var out []Record
	for _, rec := range s.records[start:] {
		if rec.Timestamp.After(to) {
			break
		}
		out = append(out, rec)
	}
	return out
}

// CoverageRange returns the earliest and latest record timestamps, including
// placeholders, and whether the store has any records at all.
func (s *Store) CoverageRange() (min, max time.Time, ok bool) {
	if s == nil || len(s.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.records[0].Timestamp, s.records[len(s.records)-1].Timestamp, true
}

// Statistics summarizes the snapshot for reporting.
type Statistics struct {
	Total        int
	Placeholders int
	BySource     map[Source]int
	ByDevice     map[string]int
	Earliest     time.Time
	Latest       time.Time
}

// Statistics computes record counts by source and device plus the covered
// time range.
func (s *Store) Statistics() Statistics {
	stats := Statistics{
		BySource: make(map[Source]int),
		ByDevice: make(map[string]int),
	}
	if s == nil {
		return stats
	}
	for _, rec := range s.records {
		stats.Total++
		if rec.Placeholder {
			stats.Placeholders++
		}
		stats.BySource[rec.Source]++
		if rec.DeviceID != "" {
			stats.ByDevice[rec.DeviceID]++
		}
	}
	if min, max, ok := s.CoverageRange(); ok {
		stats.Earliest = min
		stats.Latest = max
	}
	return stats
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func minutesBetween(a, b time.Time) float64 {
	return math.Abs(a.Sub(b).Minutes())
}
