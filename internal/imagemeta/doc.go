// Package imagemeta defines the per-image facts the inference engine
// consumes and the collaborator interfaces that supply them.
//
// EXIF parsing, directory traversal, and GPS write-back are external
// concerns; this package only describes their contracts. The Index type holds
// a scanned collection in memory and answers the candidate queries the
// nearby-image resolver needs, and can be persisted as a JSON dump so the CLI
// can run without the metadata tooling present.
package imagemeta
