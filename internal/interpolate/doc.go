// Package interpolate infers coordinates for images that lack GPS data.
//
// Resolution runs an explicit ordered chain of strategies: a priority-store
// hit short-circuits everything, then the timeline resolver tries a direct
// match within tolerance or a bracketed linear interpolation, and finally the
// nearby-image resolver falls back to a weighted spatiotemporal average over
// sibling geotagged photos. Each strategy returns a tagged result variant
// carrying exactly the provenance its method produces.
//
// Every candidate result passes a validation gate before it is accepted; an
// invalid result is treated the same as a failed attempt and never written
// anywhere.
package interpolate
