// Package build orchestrates a site build: it loads authored content,
// associates it with experiences, evaluates fingerprints through the ledger,
// and rebuilds only the units whose content actually changed.
package build
