package timeline

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func record(offset time.Duration, lat, lon float64) Record {
	return Record{
		Timestamp: baseTime.Add(offset),
		Latitude:  lat,
		Longitude: lon,
		Source:    SourcePosition,
	}
}

func placeholder(offset time.Duration) Record {
	return Record{
		Timestamp:   baseTime.Add(offset),
		Source:      SourceExtensionPlaceholder,
		Placeholder: true,
	}
}

func storeOf(records ...Record) *Store {
	return NewStore(records)
}

func TestFindClosestRecordToleranceBoundary(t *testing.T) {
	store := storeOf(record(30*time.Minute, 40, -74))

	// Exactly at the tolerance: inclusive.
	if rec := store.FindClosestRecord(baseTime, 30); rec == nil {
		t.Fatal("record exactly at tolerance must match")
	}
	// One millisecond beyond: excluded.
	target := baseTime.Add(-time.Millisecond)
	if rec := store.FindClosestRecord(target, 30); rec != nil {
		t.Fatalf("record beyond tolerance matched: %+v", rec)
	}
}

func TestFindClosestRecordPrefersNearest(t *testing.T) {
	store := storeOf(
		record(-20*time.Minute, 40.0, -74.0),
		record(5*time.Minute, 40.1, -74.1),
		record(25*time.Minute, 40.2, -74.2),
	)
	rec := store.FindClosestRecord(baseTime, 30)
	if rec == nil || rec.Latitude != 40.1 {
		t.Fatalf("closest = %+v, want the 5-minute record", rec)
	}
}

func TestFindClosestRecordEqualDeltaPrefersEarlier(t *testing.T) {
	store := storeOf(
		record(-10*time.Minute, 40.0, -74.0),
		record(10*time.Minute, 41.0, -75.0),
	)
	rec := store.FindClosestRecord(baseTime, 30)
	if rec == nil || rec.Latitude != 40.0 {
		t.Fatalf("tie broke to %+v, want earlier record", rec)
	}
}

func TestFindClosestRecordSkipsPlaceholders(t *testing.T) {
	store := storeOf(
		placeholder(1*time.Minute),
		record(20*time.Minute, 40, -74),
	)
	rec := store.FindClosestRecord(baseTime, 30)
	if rec == nil || rec.Placeholder {
		t.Fatalf("placeholder leaked into closest search: %+v", rec)
	}
}

func TestFindClosestRecordWithFallbackEscalates(t *testing.T) {
	store := storeOf(record(5*time.Hour, 40, -74))

	match := store.FindClosestRecordWithFallback(baseTime, 30, 24, false)
	if match == nil {
		t.Fatal("expected fallback match")
	}
	if !match.FallbackUsed {
		t.Fatal("fallback flag not set")
	}
	// 5 hours needs the 360-minute window.
	if match.FallbackToleranceHours != 6 {
		t.Fatalf("fallback window = %v hours, want 6", match.FallbackToleranceHours)
	}
	if math.Abs(match.TimeDifferenceMinutes-300) > 0.001 {
		t.Fatalf("time difference = %v minutes", match.TimeDifferenceMinutes)
	}
}

func TestFindClosestRecordWithFallbackBounded(t *testing.T) {
	// 40 hours away: outside the 24-hour maximum.
	store := storeOf(record(40*time.Hour, 40, -74))

	if match := store.FindClosestRecordWithFallback(baseTime, 30, 24, false); match != nil {
		t.Fatalf("bounded search must fail, got %+v", match)
	}

	match := store.FindClosestRecordWithFallback(baseTime, 30, 24, true)
	if match == nil {
		t.Fatal("unbounded search must find the record")
	}
	if !math.IsInf(match.FallbackToleranceHours, 1) {
		t.Fatalf("unbounded match window = %v", match.FallbackToleranceHours)
	}
}

func TestFindClosestRecordWithFallbackNoFallbackOnDirectHit(t *testing.T) {
	store := storeOf(record(10*time.Minute, 40, -74))
	match := store.FindClosestRecordWithFallback(baseTime, 30, 24, false)
	if match == nil || match.FallbackUsed {
		t.Fatalf("direct hit misreported: %+v", match)
	}
}

func TestInterpolateBounding(t *testing.T) {
	before := record(-10*time.Minute, 40.0, -74.0)
	after := record(10*time.Minute, 40.1, -74.1)

	mid, err := Interpolate(before, after, baseTime)
	if err != nil {
		t.Fatal(err)
	}
	if mid.Latitude < 40.0 || mid.Latitude > 40.1 {
		t.Fatalf("latitude %v escapes interval", mid.Latitude)
	}
	if mid.Longitude < -74.1 || mid.Longitude > -74.0 {
		t.Fatalf("longitude %v escapes interval", mid.Longitude)
	}
	if math.Abs(mid.Latitude-40.05) > 1e-9 {
		t.Fatalf("midpoint latitude = %v", mid.Latitude)
	}
	if mid.Source != SourceInterpolated {
		t.Fatalf("source = %v", mid.Source)
	}
	if mid.Accuracy != nil || mid.Altitude != nil || mid.Speed != nil {
		t.Fatal("accuracy/altitude/speed must not propagate")
	}

	// Endpoints reproduce the inputs.
	atStart, err := Interpolate(before, after, before.Timestamp)
	if err != nil {
		t.Fatal(err)
	}
	if atStart.Latitude != before.Latitude || atStart.Longitude != before.Longitude {
		t.Fatalf("interpolation at start = %+v", atStart)
	}
	atEnd, err := Interpolate(before, after, after.Timestamp)
	if err != nil {
		t.Fatal(err)
	}
	if atEnd.Latitude != after.Latitude || atEnd.Longitude != after.Longitude {
		t.Fatalf("interpolation at end = %+v", atEnd)
	}
}

func TestInterpolateRejectsBadOrdering(t *testing.T) {
	before := record(-10*time.Minute, 40.0, -74.0)
	after := record(10*time.Minute, 40.1, -74.1)

	if _, err := Interpolate(before, after, baseTime.Add(time.Hour)); err == nil {
		t.Fatal("target after both records must error")
	}
	if _, err := Interpolate(before, after, baseTime.Add(-time.Hour)); err == nil {
		t.Fatal("target before both records must error")
	}
}

func TestBracket(t *testing.T) {
	store := storeOf(
		record(-50*time.Minute, 39.9, -73.9),
		record(-10*time.Minute, 40.0, -74.0),
		placeholder(-5*time.Minute),
		record(10*time.Minute, 40.1, -74.1),
	)

	before, after := store.Bracket(baseTime, 60)
	if before == nil || before.Latitude != 40.0 {
		t.Fatalf("before = %+v, want nearest earlier record", before)
	}
	if after == nil || after.Latitude != 40.1 {
		t.Fatalf("after = %+v", after)
	}

	// Tight window excludes both sides.
	before, after = store.Bracket(baseTime, 5)
	if before != nil || after != nil {
		t.Fatalf("tight window should bracket nothing: %+v %+v", before, after)
	}
}

func TestRecordsInRange(t *testing.T) {
	store := storeOf(
		record(-time.Hour, 40, -74),
		record(0, 40.1, -74.1),
		record(time.Hour, 40.2, -74.2),
	)
	got := store.RecordsInRange(baseTime.Add(-30*time.Minute), baseTime.Add(90*time.Minute))
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
}

func TestStatistics(t *testing.T) {
	store := storeOf(
		record(-time.Hour, 40, -74),
		record(0, 40.1, -74.1),
		placeholder(time.Hour),
	)
	stats := store.Statistics()
	if stats.Total != 3 || stats.Placeholders != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.BySource[SourcePosition] != 2 {
		t.Fatalf("position count = %d", stats.BySource[SourcePosition])
	}
	if !stats.Earliest.Equal(baseTime.Add(-time.Hour)) || !stats.Latest.Equal(baseTime.Add(time.Hour)) {
		t.Fatalf("range = %v .. %v", stats.Earliest, stats.Latest)
	}
}

func TestLoadStoreMissingFile(t *testing.T) {
	store, err := LoadStore(filepath.Join(t.TempDir(), "absent.json"), nil)
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", store.Len())
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	missing := ValidateFile(filepath.Join(dir, "absent.json"))
	if missing.OK() || missing.Exists {
		t.Fatalf("missing file validation = %+v", missing)
	}

	badJSON := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badJSON, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if v := ValidateFile(badJSON); v.OK() || v.ValidJSON {
		t.Fatalf("bad JSON validation = %+v", v)
	}

	noEdits := filepath.Join(dir, "noedits.json")
	if err := os.WriteFile(noEdits, []byte(`{"other": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if v := ValidateFile(noEdits); v.OK() || v.HasEdits {
		t.Fatalf("missing edits validation = %+v", v)
	}

	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`{"timelineEdits": [{}, {}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	v := ValidateFile(good)
	if !v.OK() || v.EditCount != 2 {
		t.Fatalf("good file validation = %+v", v)
	}
}
