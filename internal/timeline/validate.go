package timeline

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// FileValidation reports the structural health of a timeline file. Content
// problems populate fields instead of raising errors.
type FileValidation struct {
	Path      string
	Exists    bool
	Readable  bool
	ValidJSON bool
	HasEdits  bool
	EditCount int
	Issue     string
}

// OK reports whether the file can be consumed by LoadStore.
func (v FileValidation) OK() bool {
	return v.Exists && v.Readable && v.ValidJSON && v.HasEdits
}

// ValidateFile inspects a timeline file without loading it into a store:
// existence, readability, JSON parseability, and the presence of the
// timelineEdits array.
func ValidateFile(path string) FileValidation {
	result := FileValidation{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Issue = "file does not exist"
		} else {
			result.Issue = err.Error()
		}
		return result
	}
	if info.IsDir() {
		result.Exists = true
		result.Issue = "path is a directory"
		return result
	}
	result.Exists = true

	data, err := os.ReadFile(path)
	if err != nil {
		result.Issue = err.Error()
		return result
	}
	result.Readable = true

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.Issue = "invalid JSON: " + err.Error()
		return result
	}
	result.ValidJSON = true

	editsRaw, ok := raw["timelineEdits"]
	if !ok {
		result.Issue = "missing timelineEdits array"
		return result
	}
	var edits []json.RawMessage
	if err := json.Unmarshal(editsRaw, &edits); err != nil {
		result.Issue = "timelineEdits is not an array"
		return result
	}
	result.HasEdits = true
	result.EditCount = len(edits)
	return result
}

// EffectiveTimestamp extracts the sort key for an edit: the raw signal
// position timestamp, the placeholder timestamp, or the aggregate window
// start, in that precedence. The boolean is false when no timestamp can be
// determined; callers must not silently substitute the current time for such
// edits.
func EffectiveTimestamp(edit Edit) (time.Time, bool) {
	if edit.RawSignal != nil && edit.RawSignal.Signal != nil && edit.RawSignal.Signal.Position != nil {
		if ts, err := parseTimestamp(edit.RawSignal.Signal.Position.Timestamp); err == nil {
			return ts, true
		}
	}
	if edit.PlaceholderEntry != nil {
		if ts, err := parseTimestamp(edit.PlaceholderEntry.Timestamp); err == nil {
			return ts, true
		}
	}
	if edit.PlaceAggregates != nil && edit.PlaceAggregates.ProcessWindow != nil {
		if ts, err := parseTimestamp(edit.PlaceAggregates.ProcessWindow.StartTime); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
