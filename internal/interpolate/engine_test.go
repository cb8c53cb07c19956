package interpolate

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"geotag/internal/gpsstore"
	"geotag/internal/imagemeta"
	"geotag/internal/logging"
	"geotag/internal/testsupport"
)

type recordingWriter struct {
	mu     sync.Mutex
	writes map[string]imagemeta.GPS
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{writes: make(map[string]imagemeta.GPS)}
}

func (w *recordingWriter) WriteGPS(_ context.Context, path string, gps imagemeta.GPS) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes[path] = gps
	return nil
}

func TestEngineResolvesFromTimelineAndRecords(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenGPSStore(t)
	tl := testsupport.NewTimeline().
		Position("pixel", target.Add(-10*time.Minute), 40.0, -74.0).
		Position("pixel", target.Add(10*time.Minute), 40.1, -74.1).
		Store(t)
	writer := newRecordingWriter()

	engine := NewEngine(store, tl, imagemeta.NewIndex(nil), cfg, writer, logging.NewNop())
	img := imageAt("/photos/a.jpg", target)

	outcome, err := engine.Resolve(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, StatusResolved, outcome.Status)
	require.Equal(t, SourceTimelineInterpolated, outcome.Result.Source())

	// GPS written to the file and mirrored onto the in-memory metadata.
	written, ok := writer.writes["/photos/a.jpg"]
	require.True(t, ok)
	require.InDelta(t, 40.05, written.Latitude, 1e-9)
	require.True(t, img.HasGPSCoordinates)

	// Recorded in the priority store under the timeline rank.
	stored, err := store.Get(context.Background(), "/photos/a.jpg")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, gpsstore.SourceTimelineInterpolated, stored.Source)
	require.Equal(t, gpsstore.ConfidenceMedium, stored.Confidence)
}

func TestEngineStoreHitShortCircuits(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenGPSStore(t)

	_, err := store.Upsert(context.Background(), "/photos/a.jpg",
		gpsstore.Coordinates{Latitude: 51.5, Longitude: -0.12},
		gpsstore.SourceExifGPS, nil)
	require.NoError(t, err)

	// Timeline would resolve this image; the store hit must win instead.
	tl := testsupport.NewTimeline().
		Position("pixel", target, 40.0, -74.0).
		Store(t)
	writer := newRecordingWriter()

	engine := NewEngine(store, tl, imagemeta.NewIndex(nil), cfg, writer, logging.NewNop())
	img := imageAt("/photos/a.jpg", target)

	outcome, err := engine.Resolve(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, StatusStoreHit, outcome.Status)
	require.NotNil(t, outcome.Stored)
	require.Equal(t, 51.5, img.GPS.Latitude)
	require.Empty(t, writer.writes)
}

func TestEngineSkipsImagesNotNeedingGeolocation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenGPSStore(t)
	engine := NewEngine(store, testsupport.NewTimeline().Store(t), imagemeta.NewIndex(nil), cfg, nil, logging.NewNop())

	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	img := imageAt("/photos/a.jpg", target)
	img.SetGPS(imagemeta.GPS{Latitude: 40, Longitude: -74})

	outcome, err := engine.Resolve(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, StatusSkipped, outcome.Status)
}

func TestEngineFallsThroughToNearbyImages(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenGPSStore(t)
	idx := imagemeta.NewIndex([]*imagemeta.ImageMetadata{
		geotagged("/photos/s1.jpg", target.Add(10*time.Minute), 40.0000, -74.0000),
		geotagged("/photos/s2.jpg", target.Add(-1*time.Hour), 40.0020, -74.0020),
		geotagged("/photos/s3.jpg", target.Add(2*time.Hour), 40.0040, -74.0040),
	})

	engine := NewEngine(store, testsupport.NewTimeline().Store(t), idx, cfg, newRecordingWriter(), logging.NewNop())
	img := imageAt("/photos/target.jpg", target)

	outcome, err := engine.Resolve(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, StatusResolved, outcome.Status)

	stored, err := store.Get(context.Background(), "/photos/target.jpg")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, gpsstore.SourceNearbyInterpolated, stored.Source)
	require.Equal(t, gpsstore.ConfidenceLow, stored.Confidence)
}

func TestEngineUnresolvedWhenEveryStrategyMisses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenGPSStore(t)
	engine := NewEngine(store, testsupport.NewTimeline().Store(t), imagemeta.NewIndex(nil), cfg, nil, logging.NewNop())

	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	outcome, err := engine.Resolve(context.Background(), imageAt("/photos/a.jpg", target))
	require.NoError(t, err)
	require.Equal(t, StatusUnresolved, outcome.Status)
}

func TestValidateRejectsBadResults(t *testing.T) {
	tests := []struct {
		name   string
		result Result
	}{
		{"nil result", nil},
		{"latitude out of range", ImageInterpolated{Latitude: 91, Longitude: 0}},
		{"longitude out of range", ImageInterpolated{Latitude: 0, Longitude: 181}},
		{"nan coordinate", ImageInterpolated{Latitude: math.NaN(), Longitude: 0}},
		{"infinite coordinate", ImageInterpolated{Latitude: 0, Longitude: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, Validate(tt.result))
		})
	}
}

func TestValidateAcceptsEveryVariant(t *testing.T) {
	results := []Result{
		TimelineDirect{Latitude: 40, Longitude: -74},
		TimelineInterpolated{Latitude: 40, Longitude: -74},
		ImageInterpolated{Latitude: 40, Longitude: -74},
		ImageInterpolatedRefined{Latitude: 40, Longitude: -74},
	}
	for _, r := range results {
		require.True(t, Validate(r), r.Source())
	}
}

func TestStoreSourceMapping(t *testing.T) {
	require.Equal(t, gpsstore.SourceTimelineInterpolated, StoreSource(TimelineDirect{}))
	require.Equal(t, gpsstore.SourceTimelineInterpolated, StoreSource(TimelineInterpolated{}))
	require.Equal(t, gpsstore.SourceNearbyInterpolated, StoreSource(ImageInterpolated{}))
	require.Equal(t, gpsstore.SourceNearbyInterpolated, StoreSource(ImageInterpolatedRefined{}))
}
