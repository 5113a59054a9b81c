package main

import (
	"context"
	"os/signal"
	"syscall"

	_ "github.com/jimmicro/version"
	"github.com/rs/zerolog/log"

	"github.com/jimyag/virtcim/internal/virtcim"
	"github.com/jimyag/virtcim/internal/virtcim/config"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create config")
	}
	server, err := virtcim.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run server")
	}
}
