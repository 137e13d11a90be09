package logging

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var validLogFormats = map[string]bool{
	"text":    true,
	"json":    true,
	"message": true,
}

// Config defines console logging for the broker.
type Config struct {
	// Log level, e.g. info, error etc
	Level string
	// Logging format: text, json, or message (bare messages, for command line use)
	Format string
}

// DefaultConfig is used when no logging section is configured.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	return validateLogFormat(c.Format)
}

func validateLogFormat(f string) error {
	if _, ok := validLogFormats[strings.ToLower(f)]; !ok {
		formats := maps.Keys(validLogFormats)
		slices.Sort(formats)
		return errors.Errorf("unknown log format: %s.  Valid formats are %s", f, formats)
	}
	return nil
}

// ParseLevel is logrus.ParseLevel, restricted to the levels the broker emits.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	default:
		return log.InfoLevel, errors.Errorf("unknown level: %s", level)
	}
}
