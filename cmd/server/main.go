package main

import (
	"github.com/OFFIS-RIT/graphlift/internal/config"
	"github.com/OFFIS-RIT/graphlift/internal/server"
	"github.com/OFFIS-RIT/graphlift/internal/util"
	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{}))
		logger.Fatal("Invalid configuration", "err", err)
	}

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		Format: cfg.LogFormat,
	})
	logger.Init(consoleLogger)

	server.Init(cfg)
}
