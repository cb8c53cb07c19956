// Package augment folds image-derived GPS fixes and bare image timestamps
// back into the on-disk timeline document.
//
// Candidates are classified against the existing records before insertion so
// repeated runs never duplicate entries: an exact match in time and place is
// skipped outright, a near match within the proximity thresholds likewise,
// and coordinate-free timestamps are consolidated into one placeholder per
// instant before they extend the timeline's range. The merge itself is a
// single-writer operation: an advisory file lock guards the whole
// load-merge-write cycle and the rewrite lands atomically, optionally after a
// timestamped backup of the previous document.
package augment
