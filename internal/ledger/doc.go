// Package ledger decides whether a content unit's current fingerprints
// diverge from its last persisted record and explains the divergence per
// category.
//
// Absence of a prior record is always treated as "everything changed" and
// never as an error; that is the normal state for new content. A record that
// exists but cannot be parsed propagates as an error instead, so storage
// problems are never mistaken for fresh content.
package ledger
