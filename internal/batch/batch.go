// Package batch drives per-image geolocation resolution in fixed-size
// batches with a bounded worker pool. Per-image failures are captured and
// counted, never fatal; cancellation is honored between batches so a stopped
// run leaves no half-processed batch behind.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"geotag/internal/config"
	"geotag/internal/imagemeta"
	"geotag/internal/interpolate"
	"geotag/internal/logging"
)

// ImageResolver resolves coordinates for a single image. Satisfied by
// *interpolate.Engine.
type ImageResolver interface {
	Resolve(ctx context.Context, img *imagemeta.ImageMetadata) (interpolate.Outcome, error)
}

// ImageError captures one per-image failure.
type ImageError struct {
	FilePath string `json:"filePath"`
	Message  string `json:"message"`
}

// Stats accumulates the outcome of one run.
type Stats struct {
	RunID      string         `json:"runId"`
	Processed  int            `json:"processed"`
	StoreHits  int            `json:"storeHits"`
	Resolved   map[string]int `json:"resolvedBySource"`
	Skipped    int            `json:"skipped"`
	Unresolved int            `json:"unresolved"`
	Failed     int            `json:"failed"`
	Errors     []ImageError   `json:"errors,omitempty"`
	Duration   time.Duration  `json:"duration"`
}

// ResolvedTotal sums the per-source resolution counts.
func (s *Stats) ResolvedTotal() int {
	total := 0
	for _, n := range s.Resolved {
		total += n
	}
	return total
}

// Processor runs images through a resolver in batches.
type Processor struct {
	resolver ImageResolver
	size     int
	workers  int
	pause    time.Duration
	logger   *slog.Logger
}

// NewProcessor builds a processor from batch configuration. Zero or negative
// sizing falls back to the configured defaults.
func NewProcessor(resolver ImageResolver, cfg config.Batch, logger *slog.Logger) *Processor {
	size := cfg.Size
	if size <= 0 {
		size = config.Default().Batch.Size
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = config.Default().Batch.Workers
	}
	return &Processor{
		resolver: resolver,
		size:     size,
		workers:  workers,
		pause:    time.Duration(cfg.PauseMs) * time.Millisecond,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

// Run processes every image and reports aggregate statistics. A canceled
// context stops the run at the next batch boundary; the in-flight batch
// completes first. The returned stats cover whatever was processed, alongside
// the context error when the run stopped early.
func (p *Processor) Run(ctx context.Context, images []*imagemeta.ImageMetadata) (*Stats, error) {
	stats := &Stats{
		RunID:    uuid.NewString(),
		Resolved: make(map[string]int),
	}
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	p.logger.Info("run started",
		logging.String("run_id", stats.RunID),
		logging.Int(logging.FieldCount, len(images)),
		logging.Int("batch_size", p.size),
		logging.Int("workers", p.workers))

	for offset := 0; offset < len(images); offset += p.size {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run canceled",
				logging.String("run_id", stats.RunID),
				logging.Int("processed", stats.Processed))
			return stats, err
		}
		if offset > 0 && p.pause > 0 {
			time.Sleep(p.pause)
		}

		end := offset + p.size
		if end > len(images) {
			end = len(images)
		}
		p.runBatch(ctx, images[offset:end], stats)
	}

	p.logger.Info("run finished",
		logging.String("run_id", stats.RunID),
		logging.Int("processed", stats.Processed),
		logging.Int("resolved", stats.ResolvedTotal()),
		logging.Int("failed", stats.Failed))
	return stats, nil
}

func (p *Processor) runBatch(ctx context.Context, images []*imagemeta.ImageMetadata, stats *Stats) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, p.workers)
	)
	for _, img := range images {
		wg.Add(1)
		sem <- struct{}{}
		go func(img *imagemeta.ImageMetadata) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome, err := p.resolver.Resolve(ctx, img)

			mu.Lock()
			defer mu.Unlock()
			stats.Processed++
			if err != nil {
				stats.Failed++
				stats.Errors = append(stats.Errors, ImageError{
					FilePath: img.FilePath,
					Message:  err.Error(),
				})
				p.logger.Warn("image failed",
					logging.String(logging.FieldFile, img.FilePath),
					logging.Error(err))
				return
			}
			switch outcome.Status {
			case interpolate.StatusStoreHit:
				stats.StoreHits++
			case interpolate.StatusResolved:
				stats.Resolved[outcome.Result.Source()]++
			case interpolate.StatusSkipped:
				stats.Skipped++
			case interpolate.StatusUnresolved:
				stats.Unresolved++
			}
		}(img)
	}
	wg.Wait()
}
