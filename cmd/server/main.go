package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jo-hoe/pixweb/internal/backend"
	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/common"
	"github.com/jo-hoe/pixweb/internal/core"
	frontend "github.com/jo-hoe/pixweb/internal/frontend"
)

func getConfigPath() string {
	// First check if config path is provided via environment variable
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// Default to config.yaml in current working directory
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cwd, "config.yaml")
}

// loadConfig falls back to defaults plus environment overrides when no
// config file exists.
func loadConfig(configPath string) (*core.ServiceConfig, error) {
	config, err := core.LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", configPath)
		return core.ParseConfig(nil)
	}
	return config, err
}

func main() {
	configPath := getConfigPath()
	config, err := loadConfig(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := common.NewLogger(os.Stdout, config.LogLevel, config.LogFormat)
	slog.SetDefault(logger)

	coreService, err := core.NewCoreService(config)
	if err != nil {
		slog.Error("failed to create core service", "error", err)
		os.Exit(1)
	}
	server := common.NewEchoServer(logger)

	apiService := backend.NewAPIService(coreService)
	apiService.SetRoutes(server)
	frontendService := frontend.NewFrontendService(config, coreService, catalog.NewPlaceholders())
	if err := frontendService.SetRoutes(server); err != nil {
		slog.Error("failed to set up frontend", "error", err)
		os.Exit(1)
	}

	slog.Info("pixweb site configured", "payment_app_url", config.PaymentAppURL, "database", config.Database.Type)
	if err := common.Run(server, config.Port, coreService); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
