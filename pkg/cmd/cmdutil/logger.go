package cmdutil

import (
	"os"

	"github.com/openrace/f1-replay-go/log"
	"github.com/openrace/f1-replay-go/pkg/config"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger builds the process logger from the resolved config and
// installs it as the package default.
func SetupLogger() *log.Logger {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel))
	}
	if config.LogFilter != "" {
		if filtered, err := logger.WithFilterRules(config.LogFilter); err == nil {
			logger = filtered
		} else {
			logger.Warn("ignoring log filter", log.ErrorField(err))
		}
	}
	log.ResetDefault(logger)
	return logger
}
