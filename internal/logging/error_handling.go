package logging

import (
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes a file or response body, logging a failed close
// instead of returning it.
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, resource string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close resource", err, slog.String("resource", resource))
	}
}

// LogFeedError records an upstream feed that could not be fetched or decoded.
// The caller keeps going with an empty snapshot, so this is the only trace of
// the failure besides metrics. url must already have its credentials removed.
func LogFeedError(logger *slog.Logger, agency, feed, url string, err error) {
	LogError(logger, "Error loading realtime feed", err,
		slog.String("agency", agency),
		slog.String("feed", feed),
		slog.String("url", url))
}
