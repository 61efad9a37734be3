// Package logging configures logrus from the application config.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/config"
)

// New builds a logger writing to stderr. An unknown level falls back to info.
func New(cfg config.Log) *logrus.Logger {
	return newLogger(cfg, os.Stderr)
}

// Setup applies cfg to the standard logrus logger, which is the one used by
// code that logs through the package-level functions.
func Setup(cfg config.Log) *logrus.Logger {
	std := logrus.StandardLogger()
	configure(std, cfg)
	return std
}

func newLogger(cfg config.Log, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	configure(logger, cfg)
	return logger
}

func configure(logger *logrus.Logger, cfg config.Log) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case config.LogFormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
