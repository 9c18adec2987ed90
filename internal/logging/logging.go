package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates the root logger writing to w (stderr when nil) at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix: "jdkprov",
		Level:  lvl,
	})
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Component returns a child logger for one component, tolerating a nil parent
func Component(parent *log.Logger, name string) *log.Logger {
	if parent == nil {
		parent = Discard()
	}
	return parent.WithPrefix(name)
}
