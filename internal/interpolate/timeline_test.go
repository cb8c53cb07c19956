package interpolate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"geotag/internal/imagemeta"
	"geotag/internal/testsupport"
)

func imageAt(path string, ts time.Time) *imagemeta.ImageMetadata {
	t := ts
	return &imagemeta.ImageMetadata{
		FilePath:          path,
		FileName:          path,
		Timestamp:         &t,
		HasValidTimestamp: true,
	}
}

func TestTimelineResolverInterpolatesBetweenBracketingRecords(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := testsupport.NewTimeline().
		Position("pixel", target.Add(-10*time.Minute), 40.0, -74.0).
		Position("pixel", target.Add(10*time.Minute), 40.1, -74.1).
		Store(t)

	resolver := &TimelineResolver{Store: store, ToleranceMinutes: 30}
	result, err := resolver.Resolve(context.Background(), imageAt("a.jpg", target))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, SourceTimelineInterpolated, result.Source())

	lat, lon := result.Coordinates()
	require.InDelta(t, 40.05, lat, 1e-9)
	require.InDelta(t, -74.05, lon, 1e-9)

	interpolated, ok := result.(TimelineInterpolated)
	require.True(t, ok)
	require.InDelta(t, 0.5, interpolated.Factor, 1e-9)
	require.InDelta(t, 10, interpolated.TimeDifferenceMinutes, 1e-9)
	require.True(t, Validate(result))
}

func TestTimelineResolverDirectMatchWhenOneSided(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := testsupport.NewTimeline().
		Position("pixel", target.Add(-20*time.Minute), 40.0, -74.0).
		Store(t)

	resolver := &TimelineResolver{Store: store, ToleranceMinutes: 30}
	result, err := resolver.Resolve(context.Background(), imageAt("a.jpg", target))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, SourceTimelineDirect, result.Source())

	direct, ok := result.(TimelineDirect)
	require.True(t, ok)
	require.InDelta(t, 20, direct.TimeDifferenceMinutes, 1e-9)
	require.False(t, direct.FallbackUsed)
}

func TestTimelineResolverExactTimeMatchStaysDirect(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := testsupport.NewTimeline().
		Position("pixel", target, 40.0, -74.0).
		Position("pixel", target.Add(5*time.Minute), 41.0, -75.0).
		Store(t)

	resolver := &TimelineResolver{Store: store, ToleranceMinutes: 30}
	result, err := resolver.Resolve(context.Background(), imageAt("a.jpg", target))
	require.NoError(t, err)
	require.Equal(t, SourceTimelineDirect, result.Source())

	lat, lon := result.Coordinates()
	require.Equal(t, 40.0, lat)
	require.Equal(t, -74.0, lon)
}

func TestTimelineResolverBracketsWithinDoubleTolerance(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := testsupport.NewTimeline().
		Position("pixel", target.Add(-45*time.Minute), 40.0, -74.0).
		Position("pixel", target.Add(45*time.Minute), 40.2, -74.2).
		Store(t)

	// 45min is outside the 30min direct window but inside the 60min bracket.
	resolver := &TimelineResolver{Store: store, ToleranceMinutes: 30}
	result, err := resolver.Resolve(context.Background(), imageAt("a.jpg", target))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, SourceTimelineInterpolated, result.Source())

	lat, lon := result.Coordinates()
	require.InDelta(t, 40.1, lat, 1e-9)
	require.InDelta(t, -74.1, lon, 1e-9)
}

func TestTimelineResolverFallbackSearch(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := testsupport.NewTimeline().
		Position("pixel", target.Add(-5*time.Hour), 40.0, -74.0).
		Store(t)

	resolver := &TimelineResolver{
		Store:            store,
		ToleranceMinutes: 30,
		UseFallback:      true,
		MaxFallbackHours: 24,
	}
	result, err := resolver.Resolve(context.Background(), imageAt("a.jpg", target))
	require.NoError(t, err)
	require.NotNil(t, result)

	direct, ok := result.(TimelineDirect)
	require.True(t, ok)
	require.True(t, direct.FallbackUsed)
	require.InDelta(t, 300, direct.TimeDifferenceMinutes, 1e-9)
}

func TestTimelineResolverMissesWithoutFallback(t *testing.T) {
	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := testsupport.NewTimeline().
		Position("pixel", target.Add(-5*time.Hour), 40.0, -74.0).
		Store(t)

	resolver := &TimelineResolver{Store: store, ToleranceMinutes: 30}
	result, err := resolver.Resolve(context.Background(), imageAt("a.jpg", target))
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestTimelineResolverSkipsImagesWithoutTimestamp(t *testing.T) {
	store := testsupport.NewTimeline().Store(t)
	resolver := &TimelineResolver{Store: store, ToleranceMinutes: 30}

	result, err := resolver.Resolve(context.Background(), &imagemeta.ImageMetadata{FilePath: "a.jpg"})
	require.NoError(t, err)
	require.Nil(t, result)
}
