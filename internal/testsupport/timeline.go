package testsupport

import (
	"os"
	"testing"
	"time"

	"geotag/internal/timeline"
)

// TimelineBuilder accumulates edits for a test timeline document.
type TimelineBuilder struct {
	doc timeline.Document
}

// NewTimeline returns an empty builder.
func NewTimeline() *TimelineBuilder {
	return &TimelineBuilder{}
}

// Position appends a raw signal edit for the given fix.
func (b *TimelineBuilder) Position(device string, ts time.Time, lat, lon float64) *TimelineBuilder {
	b.doc.TimelineEdits = append(b.doc.TimelineEdits, timeline.Edit{
		DeviceID: device,
		RawSignal: &timeline.RawSignal{
			Signal: &timeline.Signal{
				Position: &timeline.Position{
					Point: &timeline.Point{
						LatE7: int64(lat * 1e7),
						LngE7: int64(lon * 1e7),
					},
					Timestamp: timeline.FormatTimestamp(ts),
					Source:    "GPS",
				},
			},
		},
	})
	return b
}

// Placeholder appends a coordinate-free placeholder edit.
func (b *TimelineBuilder) Placeholder(ts time.Time, paths ...string) *TimelineBuilder {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = p
	}
	b.doc.TimelineEdits = append(b.doc.TimelineEdits, timeline.Edit{
		DeviceID: "image_timestamp_extension",
		PlaceholderEntry: &timeline.PlaceholderEntry{
			Timestamp:          timeline.FormatTimestamp(ts),
			ConsolidatedImages: true,
			ImageCount:         len(paths),
			FilePaths:          paths,
			FileNames:          names,
		},
	})
	return b
}

// Document returns the built document.
func (b *TimelineBuilder) Document() *timeline.Document {
	return &b.doc
}

// Store extracts records and wraps them in a queryable store.
func (b *TimelineBuilder) Store(t testing.TB) *timeline.Store {
	t.Helper()
	return timeline.NewStore(timeline.ExtractRecords(&b.doc, nil))
}

// WriteFile persists the document to path for merge and validation tests.
func (b *TimelineBuilder) WriteFile(t testing.TB, path string) {
	t.Helper()
	data, err := timeline.EncodeDocument(&b.doc)
	if err != nil {
		t.Fatalf("encode timeline: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write timeline: %v", err)
	}
}
