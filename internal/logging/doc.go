// Package logging wires log/slog with the console and JSON handlers used by
// the daemon and CLI, plus attribute helpers and standardized field names so
// every component logs filenames, stages, and run ids the same way.
package logging
