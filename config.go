package taskpages

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrLoggingProviderUnknown = errors.New("taskpages: unknown logging provider")
	ErrLoggingLevelInvalid    = errors.New("taskpages: invalid logging level")
	ErrLoggingFormatInvalid   = errors.New("taskpages: invalid logging format")
	ErrStorageProviderUnknown = errors.New("taskpages: unknown storage provider")
	ErrCacheRequiresStorage   = errors.New("taskpages: cache feature requires bun storage")
)

// Config drives module construction.
type Config struct {
	Logging  LoggingConfig
	Storage  StorageConfig
	URLs     URLConfig
	Features Features
	// Location is the default location used by field derivation when a
	// page does not set its own.
	Location string
}

// LoggingConfig selects the logging backend.
type LoggingConfig struct {
	// Provider is "gologger" or "noop".
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Provider is "memory" or "bun". The bun provider requires a database
	// handle supplied through WithDB.
	Provider string
}

// URLConfig drives public URL decoration of category pages.
type URLConfig struct {
	BaseURL string
}

// Features toggles optional subsystems.
type Features struct {
	Articles bool
	Cache    bool
}

// DefaultConfig returns the configuration used when callers pass a zero
// Config: noop logging, in-memory storage, articles enabled.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Provider: "noop",
			Level:    "info",
			Format:   "json",
		},
		Storage: StorageConfig{
			Provider: "memory",
		},
		URLs: URLConfig{
			BaseURL: "https://extrahand.in",
		},
		Features: Features{
			Articles: true,
		},
	}
}

var (
	validLogLevels  = []any{"", "trace", "debug", "info", "warn", "warning", "error", "fatal"}
	validLogFormats = []any{"", "json", "console", "pretty"}
)

// Validate checks the configuration for unsupported values.
func (c Config) Validate() error {
	switch c.Logging.Provider {
	case "", "noop", "gologger":
	default:
		return ErrLoggingProviderUnknown
	}
	if err := validation.Validate(c.Logging.Level, validation.In(validLogLevels...)); err != nil {
		return ErrLoggingLevelInvalid
	}
	if err := validation.Validate(c.Logging.Format, validation.In(validLogFormats...)); err != nil {
		return ErrLoggingFormatInvalid
	}
	switch c.Storage.Provider {
	case "", "memory", "bun":
	default:
		return ErrStorageProviderUnknown
	}
	if c.Features.Cache && c.Storage.Provider != "bun" {
		return ErrCacheRequiresStorage
	}
	return nil
}
