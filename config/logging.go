package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NewLogger builds the logger described by the logging configuration.
func NewLogger(cfg LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("invalid log format %q", cfg.Format)
	}

	return logger, nil
}
