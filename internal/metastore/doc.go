// Package metastore persists per-unit fingerprint records as JSON files
// under the compiled data directory, one file per slug.
//
// A missing record means "first build" and is never an error; a record that
// exists but cannot be parsed is an error, because silently discarding
// corrupt state could mask a storage problem. Writes go through a temp file
// and rename, and the serialized form keeps a stable key order so records
// can be inspected and diffed by hand.
package metastore
