// Package experiences models the time-ranged content units of the journal
// and the per-build association of locations, media, and summaries to each
// unit.
//
// Association rules: a location belongs to an experience when its timestamp
// falls inside the range inclusively, but a top-level experience only lists
// places flagged for top-level visibility. Media and summaries must fall
// strictly inside the range; a media asset is claimed by the first
// sub-experience sharing one of its tags, and stays on the parent
// otherwise. The parent's media fingerprint covers every asset seen in its
// range regardless of who claimed it.
//
// The sub-experience fingerprint is shallow: it covers display names only,
// so a change buried in a sub-experience surfaces through that
// sub-experience's own record rather than the parent's.
package experiences
