// Package media loads the per-day image and clip metadata that the
// transcoding pipeline produces, and merges both kinds into the day-ordered
// stream experiences consume.
//
// Malformed metadata aborts the build with the file named. Transcoding
// itself happens outside this tool; here an asset is only its metadata.
package media
