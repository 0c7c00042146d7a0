// Package locations loads the authored per-day location files and resolves
// each entry against the place store.
//
// Authored data that cannot form a valid timestamp aborts the build with the
// file and value named; a silently dropped location would let a stale
// fingerprint read as current.
package locations
