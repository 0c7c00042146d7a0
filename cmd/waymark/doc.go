// Command waymark builds a travel blog incrementally: it fingerprints every
// experience and page, compares against the last build's records, and
// rebuilds only what changed.
package main
