package attach

import (
	"errors"
	"log/slog"
	"os"

	"github.com/hugr-lab/attach-go/driver"
)

// ErrInvalidConfig is returned by Attach for unusable configuration.
var ErrInvalidConfig = errors.New("invalid attach configuration")

// Config assembles one attached endpoint.
type Config struct {
	// Connector implements the remote protocol (flightsql.NewConnector,
	// airport.NewConnector, or a custom driver.Connector).
	// OPTIONAL: nil attaches in degraded, metadata-empty mode.
	Connector driver.Connector

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with
	// that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored (use a
	// pre-configured logger).
	LogLevel *slog.Level
}

// logger resolves the configured logger the same way for every attach.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.LogLevel != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: *c.LogLevel,
		}))
	}
	return slog.Default()
}
