package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns a leveled logger writing to w.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log.level %q: %w", level, ErrConfig)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "qcolsim",
		ReportTimestamp: true,
	}), nil
}
