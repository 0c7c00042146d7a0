// Package watch rebuilds on authored content changes, debouncing filesystem
// events so a burst of saves triggers a single build.
package watch
