// Package logging configures slog handlers for the onyx daemon and CLI.
//
// Two output formats are supported: a compact console format for
// interactive use and JSON for machine consumption. Helper constructors
// (String, Int, Error, ...) keep call sites terse, and NewNop returns a
// discard logger for tests.
package logging
