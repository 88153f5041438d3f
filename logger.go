package seedindex

import "log/slog"

// discardLogger returns a logger that drops every record, so the library
// writes nothing unless the caller passes WithLogger.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
