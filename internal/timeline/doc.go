// Package timeline parses device location-history documents into queryable
// position records.
//
// A document is a JSON object with a timelineEdits array; each edit carries a
// raw position signal, a set of place aggregates, or a coordinate-free
// placeholder marking that photos exist at a timestamp outside the covered
// range. Extraction validates coordinates, deduplicates records by timestamp
// and rounded position, and sorts ascending by time.
//
// The Store answers the nearest-record and bracketing queries the
// interpolation engine depends on. Records are immutable once extracted; the
// store never mutates its snapshot, so one instance can be shared across
// concurrent workers.
package timeline
