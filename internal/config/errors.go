package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrNoStoreDSN is returned when no connection string for the upstream
	// store was given by flag, config file or environment.
	ErrNoStoreDSN = errors.New("no store DSN specified: use --dsn, the config file or " + EnvDSN)

	// ErrNoStylizer is returned when the neural style script is not set.
	ErrNoStylizer = errors.New("no stylizer script specified: use --neural-style-py")

	// ErrInvalidTargetWidth is returned when the preview width is not positive.
	ErrInvalidTargetWidth = errors.New("invalid target width: must be positive")

	// ErrInvalidDriver is returned for a store driver other than postgres,
	// mysql or sqlite.
	ErrInvalidDriver = errors.New("invalid store driver: must be postgres, mysql or sqlite")

	// ErrInvalidRateLimit is returned when the request rate is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is negative.
	// Use 0 for no timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidCacheFormat is returned for a parsed cache format other than
	// json or yaml.
	ErrInvalidCacheFormat = errors.New("invalid cache format: must be json or yaml")

	// ErrInvalidVariable is returned when the dataset variable is not a
	// JavaScript identifier.
	ErrInvalidVariable = errors.New("invalid output variable: must be a JavaScript identifier")

	// ErrInvalidMuseumLimit is returned when the museum limit is negative.
	ErrInvalidMuseumLimit = errors.New("invalid museum limit: must be non-negative")
)
