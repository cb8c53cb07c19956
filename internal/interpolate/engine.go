package interpolate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"geotag/internal/config"
	"geotag/internal/gpsstore"
	"geotag/internal/imagemeta"
	"geotag/internal/logging"
	"geotag/internal/timeline"
)

// Status classifies the outcome of resolving one image.
type Status string

const (
	// StatusStoreHit means the priority store already held coordinates; no
	// inference ran and nothing was written.
	StatusStoreHit Status = "store_hit"
	// StatusResolved means a chain strategy produced coordinates that were
	// written back and recorded.
	StatusResolved Status = "resolved"
	// StatusSkipped means the image did not need geolocation.
	StatusSkipped Status = "skipped"
	// StatusUnresolved means every strategy came up empty.
	StatusUnresolved Status = "unresolved"
)

// Outcome is the per-image result of an Engine pass.
type Outcome struct {
	Image  *imagemeta.ImageMetadata
	Status Status
	// Result is set for StatusResolved.
	Result Result
	// Stored is set for StatusStoreHit.
	Stored *gpsstore.Record
}

// Engine resolves coordinates for one image at a time. A priority-store hit
// short-circuits the resolver chain; a fresh result is written to the image
// file and upserted into the store under the rank its method earns.
type Engine struct {
	store  *gpsstore.Store
	chain  *Chain
	writer imagemeta.GPSWriter
	logger *slog.Logger

	// DryRun resolves coordinates without writing them to image files or the
	// priority store. Store lookups still short-circuit.
	DryRun bool
}

// NewEngine wires the standard chain: timeline first, nearby images second.
func NewEngine(store *gpsstore.Store, tl *timeline.Store, idx *imagemeta.Index, cfg *config.Config, writer imagemeta.GPSWriter, logger *slog.Logger) *Engine {
	if writer == nil {
		writer = imagemeta.NopGPSWriter{}
	}
	chain := NewChain(logger,
		&TimelineResolver{
			Store:            tl,
			ToleranceMinutes: cfg.Interpolation.ToleranceMinutes,
			UseFallback:      true,
			MaxFallbackHours: cfg.Interpolation.MaxFallbackHours,
			Unbounded:        cfg.Interpolation.AllowUnboundedFallback,
		},
		&NearbyImageResolver{
			Index:        idx,
			Window:       time.Duration(cfg.Interpolation.SecondaryTimeWindowHrs * float64(time.Hour)),
			RadiusMeters: cfg.Interpolation.SecondaryRadiusMeters,
		},
	)
	return &Engine{
		store:  store,
		chain:  chain,
		writer: writer,
		logger: logging.NewComponentLogger(logger, "interpolate"),
	}
}

// Resolve runs the full pipeline for one image and reports what happened.
func (e *Engine) Resolve(ctx context.Context, img *imagemeta.ImageMetadata) (Outcome, error) {
	if !img.NeedsGeolocation() {
		return Outcome{Image: img, Status: StatusSkipped}, nil
	}

	if e.store != nil {
		stored, err := e.store.Get(ctx, img.FilePath)
		if err != nil {
			return Outcome{}, fmt.Errorf("priority store lookup: %w", err)
		}
		if stored != nil {
			img.SetGPS(imagemeta.GPS{
				Latitude:  stored.Coordinates.Latitude,
				Longitude: stored.Coordinates.Longitude,
				Altitude:  stored.Coordinates.Altitude,
			})
			e.logger.Debug("store hit",
				logging.String(logging.FieldFile, img.FilePath),
				logging.String(logging.FieldSource, string(stored.Source)))
			return Outcome{Image: img, Status: StatusStoreHit, Stored: stored}, nil
		}
	}

	result, err := e.chain.Resolve(ctx, img)
	if err != nil {
		return Outcome{}, err
	}
	if result == nil {
		return Outcome{Image: img, Status: StatusUnresolved}, nil
	}

	lat, lon := result.Coordinates()
	gps := imagemeta.GPS{Latitude: lat, Longitude: lon}
	if !e.DryRun {
		if err := e.writer.WriteGPS(ctx, img.FilePath, gps); err != nil {
			return Outcome{}, fmt.Errorf("write gps to %s: %w", img.FilePath, err)
		}
	}
	img.SetGPS(gps)

	if e.store != nil && !e.DryRun {
		coords := gpsstore.Coordinates{Latitude: lat, Longitude: lon}
		if _, err := e.store.Upsert(ctx, img.FilePath, coords, StoreSource(result), result.Details()); err != nil {
			return Outcome{}, fmt.Errorf("record resolved coordinates: %w", err)
		}
	}

	e.logger.Info("resolved coordinates",
		logging.String(logging.FieldFile, img.FilePath),
		logging.String(logging.FieldSource, result.Source()),
		logging.Float64("lat", lat),
		logging.Float64("lon", lon))
	return Outcome{Image: img, Status: StatusResolved, Result: result}, nil
}

// StoreSource maps a result variant to the priority-store source rank it
// earns. Timeline methods outrank image-derived ones.
func StoreSource(result Result) gpsstore.Source {
	switch result.Source() {
	case SourceTimelineDirect, SourceTimelineInterpolated:
		return gpsstore.SourceTimelineInterpolated
	default:
		return gpsstore.SourceNearbyInterpolated
	}
}
