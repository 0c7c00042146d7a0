// Package fingerprint computes deterministic digests for the trackable
// categories of a content unit: locations, media, day summaries, sub-unit
// names, free text, and page rendering contexts.
//
// This package has no waymark-specific dependencies and could be extracted
// as a standalone library.
//
// Determinism rules by category:
//   - locations: sorted by canonical form before hashing
//   - media: hashed in accumulation order (order is significant)
//   - summaries and rendering contexts: serialized by sorted key
//   - sub-unit names and free text: hashed as given
//
// The digest is a hex MD5 over a NUL-separated canonical serialization,
// used only for change detection between builds, never for integrity.
package fingerprint
