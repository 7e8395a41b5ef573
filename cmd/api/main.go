package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"txn-classifier/internal/api"
	"txn-classifier/internal/app"
	"txn-classifier/internal/config"
	"txn-classifier/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file; environment variables are used when it does not exist")
	addr := flag.String("addr", "", "Listen address, overrides server.addr")
	flag.Parse()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log, err := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire application")
	}
	defer components.Close()

	if components.Dashboard == nil {
		log.Warn().Msg("no transaction source configured, only /api/v1/classify is available")
	}

	server := api.NewServer(cfg.Server, components.Engine, components.Dashboard, log)
	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		_ = components.Close()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
