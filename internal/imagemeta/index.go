package imagemeta

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Index is an in-memory collection of scanned image metadata, keyed by file
// path. It is built once per run and read concurrently by workers; mutation
// happens only through per-image SetGPS calls on distinct entries.
type Index struct {
	images []*ImageMetadata
	byPath map[string]*ImageMetadata
}

// NewIndex builds an index over the provided metadata, discarding entries
// with empty paths and later duplicates of the same path.
func NewIndex(images []*ImageMetadata) *Index {
	idx := &Index{byPath: make(map[string]*ImageMetadata, len(images))}
	for _, img := range images {
		if img == nil || img.FilePath == "" {
			continue
		}
		if _, ok := idx.byPath[img.FilePath]; ok {
			continue
		}
		idx.byPath[img.FilePath] = img
		idx.images = append(idx.images, img)
	}
	return idx
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.images)
}

// All returns the indexed images in insertion order.
func (idx *Index) All() []*ImageMetadata {
	if idx == nil {
		return nil
	}
	return idx.images
}

// Get returns the entry for a path, or nil.
func (idx *Index) Get(path string) *ImageMetadata {
	if idx == nil {
		return nil
	}
	return idx.byPath[path]
}

// NeedingGeolocation returns images with a timestamp but no coordinates.
func (idx *Index) NeedingGeolocation() []*ImageMetadata {
	var out []*ImageMetadata
	for _, img := range idx.All() {
		if img.NeedsGeolocation() {
			out = append(out, img)
		}
	}
	return out
}

// GeotaggedWithin returns geotagged images whose timestamps fall within
// window of target, sorted by ascending absolute time distance. The excluded
// path, usually the image being resolved, is skipped.
func (idx *Index) GeotaggedWithin(target time.Time, window time.Duration, excludePath string) []*ImageMetadata {
	var out []*ImageMetadata
	for _, img := range idx.All() {
		if img.FilePath == excludePath {
			continue
		}
		if !img.HasGPSCoordinates || img.GPS == nil || img.Timestamp == nil {
			continue
		}
		delta := img.Timestamp.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		if delta <= window {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di := absDelta(*out[i].Timestamp, target)
		dj := absDelta(*out[j].Timestamp, target)
		return di < dj
	})
	return out
}

func absDelta(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

// LoadIndex reads a JSON metadata dump produced by SaveIndex or by external
// scanning tooling.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image index: %w", err)
	}
	var images []*ImageMetadata
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("parse image index: %w", err)
	}
	return NewIndex(images), nil
}

// SaveIndex writes the index as a JSON array.
func SaveIndex(idx *Index, path string) error {
	data, err := json.MarshalIndent(idx.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode image index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image index: %w", err)
	}
	return nil
}
