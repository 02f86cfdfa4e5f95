// Package logger builds the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"fruit-store-api-server/config"
)

// New returns a logger configured from cfg. Unknown levels fall back to info.
func New(cfg config.LogConfig) *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(os.Stdout)

	if cfg.Format == "json" {
		lg.SetFormatter(&logrus.JSONFormatter{})
	} else {
		lg.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	lg.SetLevel(level)

	return lg
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(io.Discard)
	return lg
}
