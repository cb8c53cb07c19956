// Package geo provides coordinate validation, unit conversion, and
// great-circle math shared by the timeline store and interpolation engine.
//
// All functions are pure and operate on decimal degrees unless named
// otherwise. E7 helpers convert to and from the integer-scaled encoding used
// by location-history export documents.
package geo
