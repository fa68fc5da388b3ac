package main

import (
	"os"

	"github.com/yigit/altklausuren/internal/pkg/logger"
	"github.com/yigit/altklausuren/internal/server"
)

// @title Altklausuren API
// @version 1.0
// @description Archive of past exams and their solutions, grouped by semester

// @host localhost:3000
// @BasePath /
// @schemes http https

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
