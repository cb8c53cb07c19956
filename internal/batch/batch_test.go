package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"geotag/internal/config"
	"geotag/internal/imagemeta"
	"geotag/internal/interpolate"
	"geotag/internal/logging"
)

type stubResolver struct {
	inFlight    int32
	maxInFlight int32
	resolve     func(img *imagemeta.ImageMetadata) (interpolate.Outcome, error)
}

func (s *stubResolver) Resolve(_ context.Context, img *imagemeta.ImageMetadata) (interpolate.Outcome, error) {
	current := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&s.maxInFlight)
		if current <= seen || atomic.CompareAndSwapInt32(&s.maxInFlight, seen, current) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	return s.resolve(img)
}

func testImages(n int) []*imagemeta.ImageMetadata {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	images := make([]*imagemeta.ImageMetadata, n)
	for i := range images {
		stamp := ts.Add(time.Duration(i) * time.Minute)
		images[i] = &imagemeta.ImageMetadata{
			FilePath:          fmt.Sprintf("/photos/img%03d.jpg", i),
			Timestamp:         &stamp,
			HasValidTimestamp: true,
		}
	}
	return images
}

func TestProcessorCountsOutcomes(t *testing.T) {
	resolver := &stubResolver{}
	resolver.resolve = func(img *imagemeta.ImageMetadata) (interpolate.Outcome, error) {
		switch img.FilePath {
		case "/photos/img000.jpg":
			return interpolate.Outcome{Status: interpolate.StatusStoreHit}, nil
		case "/photos/img001.jpg":
			return interpolate.Outcome{Status: interpolate.StatusSkipped}, nil
		case "/photos/img002.jpg":
			return interpolate.Outcome{}, errors.New("exif write failed")
		case "/photos/img003.jpg":
			return interpolate.Outcome{Status: interpolate.StatusUnresolved}, nil
		default:
			return interpolate.Outcome{
				Status: interpolate.StatusResolved,
				Result: interpolate.TimelineDirect{Latitude: 40, Longitude: -74},
			}, nil
		}
	}

	processor := NewProcessor(resolver, config.Batch{Size: 3, Workers: 2}, logging.NewNop())
	stats, err := processor.Run(context.Background(), testImages(7))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Processed != 7 {
		t.Errorf("Processed = %d, want 7", stats.Processed)
	}
	if stats.StoreHits != 1 || stats.Skipped != 1 || stats.Unresolved != 1 || stats.Failed != 1 {
		t.Errorf("counts = hits %d skipped %d unresolved %d failed %d, want 1 each",
			stats.StoreHits, stats.Skipped, stats.Unresolved, stats.Failed)
	}
	if got := stats.Resolved[interpolate.SourceTimelineDirect]; got != 3 {
		t.Errorf("Resolved[timeline_direct] = %d, want 3", got)
	}
	if stats.ResolvedTotal() != 3 {
		t.Errorf("ResolvedTotal = %d, want 3", stats.ResolvedTotal())
	}
	if stats.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestProcessorCapturesPerImageErrors(t *testing.T) {
	resolver := &stubResolver{}
	resolver.resolve = func(img *imagemeta.ImageMetadata) (interpolate.Outcome, error) {
		return interpolate.Outcome{}, errors.New("boom")
	}

	processor := NewProcessor(resolver, config.Batch{Size: 5, Workers: 2}, logging.NewNop())
	stats, err := processor.Run(context.Background(), testImages(4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 4 {
		t.Errorf("Failed = %d, want 4", stats.Failed)
	}
	if len(stats.Errors) != 4 {
		t.Fatalf("Errors = %d entries, want 4", len(stats.Errors))
	}
	if stats.Errors[0].Message != "boom" {
		t.Errorf("Errors[0].Message = %q", stats.Errors[0].Message)
	}
}

func TestProcessorBoundsConcurrency(t *testing.T) {
	resolver := &stubResolver{}
	resolver.resolve = func(img *imagemeta.ImageMetadata) (interpolate.Outcome, error) {
		return interpolate.Outcome{Status: interpolate.StatusSkipped}, nil
	}

	processor := NewProcessor(resolver, config.Batch{Size: 20, Workers: 3}, logging.NewNop())
	if _, err := processor.Run(context.Background(), testImages(20)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if max := atomic.LoadInt32(&resolver.maxInFlight); max > 3 {
		t.Errorf("max in-flight = %d, want <= 3", max)
	}
}

func TestProcessorStopsBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	resolver := &stubResolver{}
	resolver.resolve = func(img *imagemeta.ImageMetadata) (interpolate.Outcome, error) {
		cancel()
		return interpolate.Outcome{Status: interpolate.StatusSkipped}, nil
	}

	processor := NewProcessor(resolver, config.Batch{Size: 2, Workers: 1}, logging.NewNop())
	stats, err := processor.Run(ctx, testImages(10))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// The in-flight batch completes; later batches never start.
	if stats.Processed != 2 {
		t.Errorf("Processed = %d, want 2", stats.Processed)
	}
}

func TestProcessorDefaultsSizing(t *testing.T) {
	resolver := &stubResolver{}
	resolver.resolve = func(img *imagemeta.ImageMetadata) (interpolate.Outcome, error) {
		return interpolate.Outcome{Status: interpolate.StatusSkipped}, nil
	}
	processor := NewProcessor(resolver, config.Batch{}, logging.NewNop())
	if processor.size <= 0 || processor.workers <= 0 {
		t.Errorf("sizing not defaulted: size=%d workers=%d", processor.size, processor.workers)
	}
}
