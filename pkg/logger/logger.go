// =============================================================================
// EPICS Archive Config Converter - Logger
// =============================================================================
//
// This package provides structured logging for the converter using zerolog.
// All components obtain a scoped logger through WithComponent, so every log
// line carries the component that produced it.
//
// Output goes to stderr by default: the XML document is the program's only
// data artifact, and diagnostics must never interleave with it.
//
// =============================================================================

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger

// Config controls logger initialization.
type Config struct {
	// Level is the minimum level to emit: "debug", "info", "warn", "error".
	// Default: "info".
	Level string `yaml:"level"`

	// Debug forces debug level regardless of Level.
	Debug bool `yaml:"debug"`

	// Output selects the destination, "stderr" or "stdout".
	// Default: "stderr".
	Output string `yaml:"output"`

	// TimeFormat overrides the timestamp format. Default: RFC3339.
	TimeFormat string `yaml:"time_format"`
}

func init() {
	globalLogger = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init configures the global logger from a Config.
//
// PARAMETERS:
//   - config: The logger configuration.
//
// RETURNS:
//   - An error if the configured level is not a valid zerolog level.
func Init(config Config) error {
	var output io.Writer = os.Stderr

	if config.Output == "stdout" {
		output = os.Stdout
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return err
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	globalLogger = zerolog.New(consoleWriter(output)).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = globalLogger

	return nil
}

// consoleWriter wraps the destination in zerolog's human-readable console
// writer. A batch CLI is read by people, not log shippers.
func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
}

// SetDebug switches the global logger between debug and info level.
func SetDebug(debug bool) {
	if debug {
		globalLogger = globalLogger.Level(zerolog.DebugLevel)
	} else {
		globalLogger = globalLogger.Level(zerolog.InfoLevel)
	}

	log.Logger = globalLogger
}

// GetLogger returns the global logger.
func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns a logger scoped to a named component.
// Example: logger.WithComponent("dbparser").
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}
