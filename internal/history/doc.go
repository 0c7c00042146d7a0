// Package history persists build run records in SQLite: one row per build
// plus one row per rebuilt experience or page, so "what changed and when"
// survives across sessions.
package history
