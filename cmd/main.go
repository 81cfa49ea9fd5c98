package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/cbitosc/HTF25-Team-416-sub000/config"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/server"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Fatal().Err(err).Msg("Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if err := server.Start(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed to start")
	}
}
