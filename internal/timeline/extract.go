package timeline

import (
	"log/slog"
	"sort"
	"time"

	"geotag/internal/geo"
	"geotag/internal/logging"
)

// ExtractRecords walks the document's edits and produces the canonical,
// deduplicated, time-sorted record set. Records failing coordinate or
// timestamp validation are dropped with a warning; extraction itself never
// fails on content.
func ExtractRecords(doc *Document, logger *slog.Logger) []Record {
	logger = logging.NewComponentLogger(logger, "timeline")
	if doc == nil {
		return nil
	}

	var records []Record
	dropped := 0
	for _, edit := range doc.TimelineEdits {
		for _, candidate := range recordsFromEdit(edit) {
			if !candidate.Valid() {
				dropped++
				logger.Warn("dropping invalid timeline record",
					logging.Args(
						logging.String("source", string(candidate.Source)),
						logging.Float64("lat", candidate.Latitude),
						logging.Float64("lon", candidate.Longitude),
					)...)
				continue
			}
			records = append(records, candidate)
		}
	}

	deduped := dedupRecords(records)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Timestamp.Before(deduped[j].Timestamp)
	})

	if dropped > 0 || len(records) != len(deduped) {
		logger.Info("timeline extraction complete",
			logging.Args(
				logging.Int("records", len(deduped)),
				logging.Int("dropped", dropped),
				logging.Int("duplicates", len(records)-len(deduped)),
			)...)
	}
	return deduped
}

// recordsFromEdit converts one edit into zero or more candidate records. The
// timestamp parse errors surface as zero times, which Valid() rejects.
func recordsFromEdit(edit Edit) []Record {
	switch {
	case edit.RawSignal != nil:
		rec, ok := recordFromRawSignal(edit)
		if !ok {
			return nil
		}
		return []Record{rec}
	case edit.PlaceholderEntry != nil:
		return []Record{recordFromPlaceholder(edit)}
	case edit.PlaceAggregates != nil:
		return recordsFromAggregates(edit)
	default:
		return nil
	}
}

func recordFromRawSignal(edit Edit) (Record, bool) {
	signal := edit.RawSignal.Signal
	if signal == nil || signal.Position == nil || signal.Position.Point == nil {
		return Record{}, false
	}
	pos := signal.Position
	ts, err := parseTimestamp(pos.Timestamp)
	if err != nil {
		ts = time.Time{}
	}
	rec := Record{
		Timestamp: ts,
		Latitude:  geo.E7ToDecimal(pos.Point.LatE7),
		Longitude: geo.E7ToDecimal(pos.Point.LngE7),
		Source:    SourcePosition,
		DeviceID:  edit.DeviceID,
		Altitude:  pos.AltitudeMeters,
		Speed:     pos.SpeedMetersPerSecond,
	}
	if pos.AccuracyMm != nil {
		meters := float64(*pos.AccuracyMm) / 1000
		rec.Accuracy = &meters
	}
	return rec, true
}

func recordFromPlaceholder(edit Edit) Record {
	entry := edit.PlaceholderEntry
	ts, err := parseTimestamp(entry.Timestamp)
	if err != nil {
		ts = time.Time{}
	}
	source := SourceExtensionPlaceholder
	return Record{
		Timestamp:   ts,
		Source:      source,
		DeviceID:    edit.DeviceID,
		Placeholder: true,
		ImagePaths:  entry.FilePaths,
		ImageNames:  entry.FileNames,
		ImageCount:  entry.ImageCount,
	}
}

// recordsFromAggregates yields one record per aggregated place. All share the
// window start timestamp.
func recordsFromAggregates(edit Edit) []Record {
	agg := edit.PlaceAggregates
	if agg.ProcessWindow == nil {
		return nil
	}
	ts, err := parseTimestamp(agg.ProcessWindow.StartTime)
	if err != nil {
		return nil
	}
	var records []Record
	for _, info := range agg.PlaceAggregateInfo {
		if info.Point == nil {
			continue
		}
		records = append(records, Record{
			Timestamp: ts,
			Latitude:  geo.E7ToDecimal(info.Point.LatE7),
			Longitude: geo.E7ToDecimal(info.Point.LngE7),
			Source:    SourcePlaceAggregate,
			DeviceID:  edit.DeviceID,
		})
	}
	return records
}

// dedupRecords keeps the first occurrence per composite key.
func dedupRecords(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		key := rec.dedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
