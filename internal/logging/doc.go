// Package logging builds the slog loggers used by lingo commands.
//
// Diagnostics always go to stderr (or the writer given in Options) so that
// command output on stdout stays clean for piping.
package logging
