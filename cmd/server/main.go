package main

import (
	"context"
	"fmt"

	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/handler"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/server"
	"github.com/galionhq/nexus/internal/service"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("nexus-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildVersion
	}

	// Secrets stay out of the logs; addresses are enough to confirm wiring.
	log.Debug().
		Str("http_address", cfg.Server.HTTPAddress).
		Str("redis_address", cfg.Storage.Redis.Addr).
		Dur("reconcile_interval", cfg.Workers.ReconcileInterval).
		Msg("received configs")

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services, err := service.NewServices(storages, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	background := workers.NewWorkers(services, storages, cfg.Workers, log)
	background.Run()
	defer background.Stop()

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
