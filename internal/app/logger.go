package app

import (
	"io"
	"strings"

	"github.com/felixgeelhaar/txext/internal/adapters/logging"
	"github.com/felixgeelhaar/txext/internal/config"
	"github.com/felixgeelhaar/txext/internal/ports"
)

// NewLogger builds the logger described by cfg, writing to out.
func NewLogger(cfg config.LogConfig, out io.Writer) (ports.Logger, error) {
	level, err := ports.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewZerologLogger(
		logging.WithOutput(out),
		logging.WithLevel(level),
		logging.WithJSONFormat(strings.EqualFold(cfg.Format, "json")),
	), nil
}
