// Package gpsstore persists resolved GPS fixes per image file in SQLite.
//
// The store memoizes the outcome of geolocation inference across runs so an
// image is never re-resolved once a coordinate of equal or higher priority is
// known. Sources follow a strict priority order; an upsert only replaces an
// existing row when the new source outranks the stored one. A DATABASE hit
// short-circuits all further work for that file.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package gpsstore
