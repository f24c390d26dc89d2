// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/modbus-pointbridge/internal/config"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New builds the process logger from the log section.
// An empty level means info; an empty format means text.
func New(c cfg.LogConfig) (*logrus.Logger, error) {
	return newWithOutput(c, os.Stderr)
}

func newWithOutput(c cfg.LogConfig, out io.Writer) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(out)

	level := logrus.InfoLevel
	if c.Level != "" {
		lv, err := logrus.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = lv
	}
	l.SetLevel(level)

	switch c.Format {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", c.Format)
	}

	return l, nil
}
