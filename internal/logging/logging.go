// Package logging configures the process-wide zerolog logger. Diagnostics go
// to stderr so they never interleave with the narration on stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel overrides the level passed to Configure.
const EnvLevel = "PASS_LOG_LEVEL"

// DefaultLevel keeps everything below warnings quiet.
const DefaultLevel = "warn"

// Configure installs a console logger on stderr at level, or at
// $PASS_LOG_LEVEL when that is set.
func Configure(level string) error {
	return configure(os.Stderr, level)
}

func configure(w io.Writer, level string) error {
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}).With().Timestamp().Logger()
	return nil
}

func parseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = DefaultLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	if lvl == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
