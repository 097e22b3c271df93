// internal/pkg/config/errors.go
package config

import "errors"

// Validation sentinels. Validate joins these with multierr so callers see
// every configuration problem in one pass.
var (
	ErrMissingHost         = errors.New("OIPA_DB_HOST is required")
	ErrMissingServiceName  = errors.New("OIPA_DB_SERVICE_NAME is required")
	ErrMissingUsername     = errors.New("OIPA_DB_USERNAME is required")
	ErrMissingPassword     = errors.New("OIPA_DB_PASSWORD is required")
	ErrInvalidPort         = errors.New("OIPA_DB_PORT must be between 1 and 65535")
	ErrInvalidPoolBounds   = errors.New("DB_POOL_MAX_SIZE must be positive and >= DB_POOL_MIN_SIZE")
	ErrInvalidQueryTimeout = errors.New("QUERY_TIMEOUT must be positive")
	ErrInvalidResultCap    = errors.New("MAX_QUERY_RESULTS must be positive")
	ErrInvalidDefaultRows  = errors.New("DEFAULT_MAX_ROWS must be positive")
	ErrMissingSecretName   = errors.New("AWS_SECRET_NAME is required when AWS_USE_SECRETS is set")
)
