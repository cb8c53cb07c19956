package augment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"geotag/internal/config"
	"geotag/internal/fileutil"
	"geotag/internal/imagemeta"
	"geotag/internal/logging"
	"geotag/internal/timeline"
)

const lockRetryDelay = 100 * time.Millisecond

// Merger folds image-derived records into a timeline document on disk.
type Merger struct {
	opts   config.Augmentation
	logger *slog.Logger
}

// NewMerger builds a merger with the given thresholds.
func NewMerger(opts config.Augmentation, logger *slog.Logger) *Merger {
	return &Merger{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "augment"),
	}
}

// Augment runs the full load-merge-write cycle for one timeline file. The
// whole cycle holds an advisory lock so concurrent runs cannot interleave. A
// missing timeline file starts empty. When backups are enabled, a failed
// backup aborts the merge.
func (m *Merger) Augment(ctx context.Context, timelinePath string, images []*imagemeta.ImageMetadata) (*Report, error) {
	lock := flock.New(timelinePath + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire timeline lock: %w", err)
	}
	if !locked {
		return nil, errors.New("timeline file is locked by another process")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			m.logger.Warn("failed to release timeline lock", logging.Error(err))
		}
	}()

	doc, exists, err := loadDocument(timelinePath)
	if err != nil {
		return nil, err
	}
	existing := timeline.ExtractRecords(doc, m.logger)
	rangeMin, rangeMax, haveRange := timeline.NewStore(existing).CoverageRange()

	report := &Report{ImagesProcessed: len(images)}
	var newEdits []timeline.Edit

	// Coordinate-bearing candidates first; accepted ones join the comparison
	// set so a burst of identical fixes yields a single record.
	for _, cand := range positionCandidates(images, m.logger) {
		report.ImagesWithGPS++
		switch classifyPosition(cand, existing, m.opts) {
		case classExact:
			report.ExactDuplicatesSkipped++
		case classProximity:
			report.ProximityDuplicatesSkipped++
		default:
			newEdits = append(newEdits, positionEdit(cand))
			existing = append(existing, cand)
			report.NewRecords++
		}
	}

	// Range extension: consolidated placeholders for timestamps outside the
	// original coverage.
	var outside []*imagemeta.ImageMetadata
	for _, img := range extensionCandidates(images) {
		ts := img.Timestamp.UTC()
		if haveRange && !ts.Before(rangeMin) && !ts.After(rangeMax) {
			continue
		}
		outside = append(outside, img)
	}
	placeholders := consolidate(outside)
	report.ConsolidationSavings = len(outside) - len(placeholders)
	for _, rec := range placeholders {
		// Any record within the exact time tolerance, including one added
		// earlier in this run, supersedes the placeholder.
		if placeholderBlocked(rec.Timestamp, existing, m.opts) {
			continue
		}
		newEdits = append(newEdits, placeholderEdit(rec))
		existing = append(existing, rec)
		report.ExtensionPlaceholders++
	}

	if !report.Changed() {
		m.logger.Info("timeline already up to date",
			logging.String(logging.FieldFile, timelinePath),
			logging.Int("images", report.ImagesProcessed))
		return report, nil
	}

	if m.opts.CreateBackup && exists {
		backupPath, err := backupTimeline(timelinePath)
		if err != nil {
			return nil, fmt.Errorf("backup timeline before merge: %w", err)
		}
		report.BackupPath = backupPath
	}

	doc.TimelineEdits = append(doc.TimelineEdits, newEdits...)
	report.UnknownTimestampEdits = sortEdits(doc.TimelineEdits)
	if report.UnknownTimestampEdits > 0 {
		m.logger.Warn("edits without a determinable timestamp kept at end of document",
			logging.Int(logging.FieldCount, report.UnknownTimestampEdits))
	}

	data, err := timeline.EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	if err := fileutil.WriteFileAtomic(timelinePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write augmented timeline: %w", err)
	}

	m.logger.Info("timeline augmented",
		logging.String(logging.FieldFile, timelinePath),
		logging.Int("new_records", report.NewRecords),
		logging.Int("extensions", report.ExtensionPlaceholders),
		logging.Int("exact_skipped", report.ExactDuplicatesSkipped),
		logging.Int("proximity_skipped", report.ProximityDuplicatesSkipped))
	return report, nil
}

func loadDocument(path string) (doc *timeline.Document, exists bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &timeline.Document{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read timeline: %w", err)
	}
	doc, err = timeline.ParseDocument(data)
	if err != nil {
		return nil, true, err
	}
	return doc, true, nil
}

// backupTimeline snapshots the current file next to itself with a UTC stamp
// and a short unique suffix.
func backupTimeline(path string) (string, error) {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	dst := fmt.Sprintf("%s.backup-%s-%s", path, stamp, uuid.NewString()[:8])
	if err := fileutil.CopyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// sortEdits orders edits by effective timestamp and returns the number of
// edits whose timestamp could not be determined. Those stay at the end in
// their original relative order; substituting the current time would scatter
// them through the document on every run.
func sortEdits(edits []timeline.Edit) int {
	type keyed struct {
		edit timeline.Edit
		ts   time.Time
		ok   bool
	}
	keys := make([]keyed, len(edits))
	unknown := 0
	for i, edit := range edits {
		ts, ok := timeline.EffectiveTimestamp(edit)
		keys[i] = keyed{edit: edit, ts: ts, ok: ok}
		if !ok {
			unknown++
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].ok != keys[j].ok {
			return keys[i].ok
		}
		if !keys[i].ok {
			return false
		}
		return keys[i].ts.Before(keys[j].ts)
	})
	for i := range keys {
		edits[i] = keys[i].edit
	}
	return unknown
}
