// Package logging sets up the process-wide zerolog logger. Initialize once
// at startup; request-scoped logging goes through Ctx so trace ids attach to
// every line.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecdye/jwt-pizza-service/internal/trace"
)

type Config struct {
	// Level is the minimum level: debug, info, warn, error. Default info.
	Level string
	// Format is json or console. Default json.
	Format string
}

func Init(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Ctx returns a logger carrying the request trace id when present.
func Ctx(ctx context.Context) zerolog.Logger {
	l := log.Logger
	if id := trace.From(ctx); id != "" {
		l = l.With().Str("trace", id).Logger()
	}
	return l
}
