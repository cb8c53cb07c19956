package timeline

import (
	"encoding/json"
	"fmt"
)

// Document is the on-disk shape of a location-history export.
type Document struct {
	TimelineEdits []Edit `json:"timelineEdits"`
}

// Edit is a single entry in the timelineEdits array. Exactly one of
// RawSignal, PlaceholderEntry, or PlaceAggregates is expected to be set;
// edits with none are preserved but contribute no records.
type Edit struct {
	DeviceID         string            `json:"deviceId,omitempty"`
	RawSignal        *RawSignal        `json:"rawSignal,omitempty"`
	PlaceholderEntry *PlaceholderEntry `json:"placeholderEntry,omitempty"`
	PlaceAggregates  *PlaceAggregates  `json:"placeAggregates,omitempty"`
}

// Point is an E7-encoded coordinate pair.
type Point struct {
	LatE7 int64 `json:"latE7"`
	LngE7 int64 `json:"lngE7"`
}

// RawSignal wraps a direct position fix.
type RawSignal struct {
	Signal *Signal `json:"signal,omitempty"`
}

// Signal carries the position payload of a raw signal edit.
type Signal struct {
	Position *Position `json:"position,omitempty"`
}

// Position is a single device fix inside a raw signal.
type Position struct {
	Point                *Point   `json:"point,omitempty"`
	Timestamp            string   `json:"timestamp,omitempty"`
	AccuracyMm           *int64   `json:"accuracyMm,omitempty"`
	AltitudeMeters       *float64 `json:"altitudeMeters,omitempty"`
	SpeedMetersPerSecond *float64 `json:"speedMetersPerSecond,omitempty"`
	Source               string   `json:"source,omitempty"`
}

// PlaceholderEntry records that images exist at a timestamp without any
// position data. It is the only edit type with no coordinates.
type PlaceholderEntry struct {
	Timestamp          string   `json:"timestamp"`
	ConsolidatedImages bool     `json:"consolidatedImages,omitempty"`
	ImageCount         int      `json:"imageCount,omitempty"`
	FilePaths          []string `json:"filePaths,omitempty"`
	FileNames          []string `json:"fileNames,omitempty"`
}

// PlaceAggregates groups visited places over a processing window. Every
// aggregate shares the window start as its timestamp.
type PlaceAggregates struct {
	ProcessWindow      *ProcessWindow       `json:"processWindow,omitempty"`
	PlaceAggregateInfo []PlaceAggregateInfo `json:"placeAggregateInfo,omitempty"`
}

// ProcessWindow bounds a place-aggregation pass.
type ProcessWindow struct {
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// PlaceAggregateInfo is one aggregated place inside a window.
type PlaceAggregateInfo struct {
	Point   *Point  `json:"point,omitempty"`
	Score   float64 `json:"score,omitempty"`
	PlaceID string  `json:"placeId,omitempty"`
}

// ParseDocument decodes a timeline document from raw JSON.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timeline document: %w", err)
	}
	return &doc, nil
}

// EncodeDocument serializes a document with stable indentation for on-disk
// storage.
func EncodeDocument(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode timeline document: %w", err)
	}
	return data, nil
}
