package augment

import (
	"log/slog"
	"sort"
	"time"

	"geotag/internal/geo"
	"geotag/internal/imagemeta"
	"geotag/internal/logging"
	"geotag/internal/timeline"
)

// Device IDs stamped on edits this package creates.
const (
	// ExtensionDeviceID marks coordinate-free placeholders that extend the
	// timeline's temporal range.
	ExtensionDeviceID = "image_timestamp_extension"
	// ImageGPSDeviceID marks position records lifted from image metadata.
	ImageGPSDeviceID = "image_gps"
)

// positionCandidates builds one coordinate-bearing record per geotagged image
// with a timestamp. Invalid coordinate pairs are dropped with a warning, not
// an error.
func positionCandidates(images []*imagemeta.ImageMetadata, logger *slog.Logger) []timeline.Record {
	var out []timeline.Record
	for _, img := range images {
		if img.Timestamp == nil || !img.HasGPSCoordinates || img.GPS == nil {
			continue
		}
		if !img.GPS.Valid() {
			logger.Warn("image has out-of-range coordinates, skipping",
				logging.String(logging.FieldFile, img.FilePath),
				logging.Float64("lat", img.GPS.Latitude),
				logging.Float64("lon", img.GPS.Longitude))
			continue
		}
		out = append(out, timeline.Record{
			Timestamp:  img.Timestamp.UTC(),
			Latitude:   img.GPS.Latitude,
			Longitude:  img.GPS.Longitude,
			Altitude:   img.GPS.Altitude,
			Source:     timeline.SourceImageEXIF,
			DeviceID:   ImageGPSDeviceID,
			ImagePaths: []string{img.FilePath},
			ImageNames: []string{img.FileName},
			ImageCount: 1,
		})
	}
	return out
}

// plausibleTimestamp accepts years strictly between 1970 and 2100; epoch
// defaults and obviously corrupt EXIF dates fall outside that band.
func plausibleTimestamp(t time.Time) bool {
	year := t.UTC().Year()
	return year > 1970 && year < 2100
}

// extensionCandidates collects every image timestamp, geotagged or not, that
// could extend the timeline's range.
func extensionCandidates(images []*imagemeta.ImageMetadata) []*imagemeta.ImageMetadata {
	var out []*imagemeta.ImageMetadata
	for _, img := range images {
		if img.Timestamp == nil || !plausibleTimestamp(*img.Timestamp) {
			continue
		}
		out = append(out, img)
	}
	return out
}

// consolidate groups candidates by their exact formatted timestamp and
// collapses each group into a single placeholder record listing every
// contributing image. This is what keeps a fifty-shot burst from becoming
// fifty timeline entries.
func consolidate(images []*imagemeta.ImageMetadata) []timeline.Record {
	groups := make(map[string][]*imagemeta.ImageMetadata)
	var order []string
	for _, img := range images {
		key := timeline.FormatTimestamp(*img.Timestamp)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], img)
	}
	sort.Strings(order)

	out := make([]timeline.Record, 0, len(order))
	for _, key := range order {
		members := groups[key]
		paths := make([]string, len(members))
		names := make([]string, len(members))
		for i, img := range members {
			paths[i] = img.FilePath
			names[i] = img.FileName
		}
		out = append(out, timeline.Record{
			Timestamp:   members[0].Timestamp.UTC(),
			Source:      timeline.SourceExtensionPlaceholder,
			DeviceID:    ExtensionDeviceID,
			Placeholder: true,
			ImagePaths:  paths,
			ImageNames:  names,
			ImageCount:  len(members),
		})
	}
	return out
}

// positionEdit converts an accepted coordinate record to the document's
// native encoding.
func positionEdit(rec timeline.Record) timeline.Edit {
	return timeline.Edit{
		DeviceID: rec.DeviceID,
		RawSignal: &timeline.RawSignal{
			Signal: &timeline.Signal{
				Position: &timeline.Position{
					Point: &timeline.Point{
						LatE7: geo.DecimalToE7(rec.Latitude),
						LngE7: geo.DecimalToE7(rec.Longitude),
					},
					Timestamp:      timeline.FormatTimestamp(rec.Timestamp),
					AltitudeMeters: rec.Altitude,
					Source:         string(rec.Source),
				},
			},
		},
	}
}

// placeholderEdit converts a consolidated placeholder record to an edit.
func placeholderEdit(rec timeline.Record) timeline.Edit {
	return timeline.Edit{
		DeviceID: rec.DeviceID,
		PlaceholderEntry: &timeline.PlaceholderEntry{
			Timestamp:          timeline.FormatTimestamp(rec.Timestamp),
			ConsolidatedImages: true,
			ImageCount:         rec.ImageCount,
			FilePaths:          rec.ImagePaths,
			FileNames:          rec.ImageNames,
		},
	}
}
