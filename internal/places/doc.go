// Package places loads authored place definitions and maintains their
// compiled JSON representations.
//
// A place is authored as one YAML file; the raw bytes are checksummed on
// load so the compiled copy can be skipped when nothing changed. Fetching
// map thumbnails is a separate concern handled outside this tool.
package places
