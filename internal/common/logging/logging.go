package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets up the global logrus logger from the supplied config.
// Output goes to stdout unless out is non-nil.
func ConfigureLogging(config Config, out io.Writer) error {
	if err := config.Validate(); err != nil {
		return err
	}
	level, _ := ParseLevel(config.Level)
	log.SetLevel(level)
	log.SetFormatter(formatterFor(config.Format))
	if out == nil {
		out = os.Stdout
	}
	log.SetOutput(out)
	return nil
}

// ConfigureCliLogging sets up bare message logging, suitable for humans at a terminal.
func ConfigureCliLogging() {
	log.SetFormatter(&CommandLineFormatter{})
	log.SetOutput(os.Stderr)
}

func formatterFor(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &log.JSONFormatter{}
	case "message":
		return &CommandLineFormatter{}
	default:
		return &log.TextFormatter{ForceColors: true, FullTimestamp: true}
	}
}

type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	return []byte(fmt.Sprintf("%s\n", entry.Message)), nil
}
