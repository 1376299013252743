package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/galionhq/nexus/internal/adapter"
	"github.com/galionhq/nexus/internal/client"
	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/tui"
	"github.com/galionhq/nexus/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	// Registered before config loading, which parses the command line.
	startWithQR := flag.Bool("qr", false, "Open directly on the QR sign-in screen")

	printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("nexus-client").Fatal().Err(err).Msg("error getting configs")
	}

	// Logs go to a file so they never interleave with the rendered UI.
	log := logger.NewFileLogger("nexus-client", cfg.App.LogFile)

	version := buildVersion
	if version == "N/A" && cfg.App.Version != "" {
		version = cfg.App.Version
	}
	buildInfo := models.NewAppBuildInfo(version, buildDate, buildCommit)

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	ui, err := tui.New(serverAdapter, buildInfo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(serverAdapter, ui, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(context.Background(), *startWithQR); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
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
