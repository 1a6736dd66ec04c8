// Package log builds the slog loggers used by museumstyle.
//
// Every logger returned from this package is wrapped in a RedactingHandler.
// Database connection strings and proxy URLs routinely carry passwords, and
// the build command logs both at debug level, so the handler rewrites
// credentials before a record reaches the underlying text or JSON handler:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("opening store", "dsn", "postgres://wiki:hunter2@db/wiki")
//	// dsn=postgres://wiki:***REDACTED***@db/wiki
//
// Attributes whose key names a secret (password, token, cookie) are masked
// entirely.
package log
