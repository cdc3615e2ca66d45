package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/nkaewam/soundcloudy/config"
	"github.com/nkaewam/soundcloudy/internal/scdl"
	"github.com/nkaewam/soundcloudy/internal/server"
	"github.com/nkaewam/soundcloudy/internal/storage"
)

func main() {
	port := flag.String("port", "", "Server port (overrides the config file)")
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	workspace, err := storage.NewLocalWorkspace(cfg.Downloader.TempDir)
	if err != nil {
		slog.Error("Failed to create scratch workspace", "error", err)
		os.Exit(1)
	}
	storage.StartSweeper(context.Background(), workspace, cfg.Downloader.ScratchTTL)

	// One client shared by every request
	client := scdl.NewClient(scdl.Config{
		Binary:    cfg.Downloader.Binary,
		ClientID:  cfg.Downloader.ClientID,
		AuthToken: cfg.Downloader.AuthToken,
		Timeout:   cfg.Downloader.Timeout,
	}, workspace)

	srv := server.New(cfg, client)

	listenPort := cfg.Server.Port
	if *port != "" {
		listenPort = *port
	}

	slog.Info("Starting SoundCloud download API server",
		"port", listenPort,
		"anonymous", cfg.Downloader.ClientID == "" && cfg.Downloader.AuthToken == "",
	)
	if err := srv.Start(listenPort); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
