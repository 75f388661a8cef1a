package main

import (
	"connect4/agent"
	"connect4/config"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load(os.Args[1:])

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg != nil && cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	a, err := agent.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create agent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("role", cfg.Role).Msg("starting")
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Str("role", cfg.Role).Msg("agent failed")
	}
	log.Info().Str("role", cfg.Role).Msg("stopped")
}
