package main

import (
	"os"

	"github.com/yigit/altklausuren/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("Admin command failed")
		os.Exit(1)
	}
}
