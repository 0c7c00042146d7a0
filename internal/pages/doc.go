// Package pages models standalone site pages: template-rendered units whose
// change detection runs on a single checksum of their active context rather
// than the per-category fingerprints experiences use.
package pages
