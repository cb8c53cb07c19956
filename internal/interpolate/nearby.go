package interpolate

import (
	"context"
	"time"

	"geotag/internal/geo"
	"geotag/internal/imagemeta"
)

const maxNearbyCandidates = 5

// NearbyImageResolver infers coordinates from geotagged photos shot around
// the same time. Candidates are weighted by temporal proximity, averaged into
// a provisional centroid, then refined to the subset within RadiusMeters of
// that centroid using a combined temporal and spatial weight.
type NearbyImageResolver struct {
	Index        *imagemeta.Index
	Window       time.Duration
	RadiusMeters float64

	// TemporalShare is the temporal fraction of the combined refinement
	// weight; the spatial fraction is its complement.
	TemporalShare float64
}

func (r *NearbyImageResolver) Name() string { return "nearby-images" }

func (r *NearbyImageResolver) Resolve(_ context.Context, img *imagemeta.ImageMetadata) (Result, error) {
	if r.Index == nil || img.Timestamp == nil || r.Window <= 0 {
		return nil, nil
	}
	target := *img.Timestamp

	candidates := r.weighted(target, img.FilePath)
	if len(candidates) == 0 {
		return nil, nil
	}

	provisionalLat, provisionalLon, temporalTotal := centroid(candidates, func(c CandidateImage) float64 {
		return c.TemporalWeight
	})

	refined := r.refine(candidates, provisionalLat, provisionalLon)
	if len(refined) == 0 {
		return ImageInterpolated{
			Latitude:   provisionalLat,
			Longitude:  provisionalLon,
			Confidence: temporalTotal / float64(len(candidates)),
			Candidates: candidates,
		}, nil
	}

	lat, lon, combinedTotal := centroid(refined, func(c CandidateImage) float64 {
		return c.CombinedWeight
	})
	return ImageInterpolatedRefined{
		Latitude:     lat,
		Longitude:    lon,
		Confidence:   combinedTotal / float64(len(refined)),
		RadiusMeters: r.RadiusMeters,
		Candidates:   refined,
	}, nil
}

// weighted collects the top temporally weighted candidates around target.
// GeotaggedWithin returns images ordered by time distance, so the first
// surviving entries are the heaviest.
func (r *NearbyImageResolver) weighted(target time.Time, excludePath string) []CandidateImage {
	nearby := r.Index.GeotaggedWithin(target, r.Window, excludePath)
	candidates := make([]CandidateImage, 0, maxNearbyCandidates)
	for _, meta := range nearby {
		delta := target.Sub(*meta.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		weight := 1 - float64(delta)/float64(r.Window)
		if weight <= 0 {
			continue
		}
		candidates = append(candidates, CandidateImage{
			FilePath:       meta.FilePath,
			Latitude:       meta.GPS.Latitude,
			Longitude:      meta.GPS.Longitude,
			TemporalWeight: weight,
		})
		if len(candidates) == maxNearbyCandidates {
			break
		}
	}
	return candidates
}

// refine keeps candidates within RadiusMeters of the provisional centroid and
// assigns each a combined weight from its temporal and spatial proximity.
func (r *NearbyImageResolver) refine(candidates []CandidateImage, lat, lon float64) []CandidateImage {
	if r.RadiusMeters <= 0 {
		return nil
	}
	temporalShare := r.TemporalShare
	if temporalShare <= 0 || temporalShare >= 1 {
		temporalShare = defaultTemporalShare
	}

	refined := make([]CandidateImage, 0, len(candidates))
	for _, c := range candidates {
		dist := geo.HaversineDistance(lat, lon, c.Latitude, c.Longitude)
		if dist > r.RadiusMeters {
			continue
		}
		c.DistanceMeters = dist
		c.SpatialWeight = 1 - dist/r.RadiusMeters
		c.CombinedWeight = temporalShare*c.TemporalWeight + (1-temporalShare)*c.SpatialWeight
		refined = append(refined, c)
	}
	return refined
}

const defaultTemporalShare = 0.6

func centroid(candidates []CandidateImage, weight func(CandidateImage) float64) (lat, lon, total float64) {
	for _, c := range candidates {
		w := weight(c)
		lat += c.Latitude * w
		lon += c.Longitude * w
		total += w
	}
	if total > 0 {
		lat /= total
		lon /= total
	}
	return lat, lon, total
}
