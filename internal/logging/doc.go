// Package logging builds the slog loggers used across waymark.
//
// Two output formats are supported: a compact console format for interactive
// runs and JSON for anything that scrapes logs. Components obtain a child
// logger via NewComponentLogger so every line carries a component attribute,
// and tests use NewNop to silence output.
package logging
