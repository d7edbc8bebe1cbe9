package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/common"
	"github.com/jo-hoe/pixweb/internal/core"
	"github.com/jo-hoe/pixweb/internal/payment"
	"github.com/jo-hoe/pixweb/internal/paymentapp"
)

func getConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cwd, "config.yaml")
}

func main() {
	configPath := getConfigPath()
	config, err := core.LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", configPath)
		config, err = core.ParseConfig(nil)
	}
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := common.NewLogger(os.Stdout, config.LogLevel, config.LogFormat)
	slog.SetDefault(logger)

	// The core service is only used to read collections generated by the
	// site, so both deployments must point at the same database.
	coreService, err := core.NewCoreService(config)
	if err != nil {
		slog.Error("failed to create core service", "error", err)
		os.Exit(1)
	}
	checkout := payment.NewCheckout(config.PaymentDelay, config.PaymentRetention)

	server := common.NewEchoServer(logger)
	service := paymentapp.NewPaymentAppService(config, coreService, checkout, catalog.NewPlaceholders())
	if err := service.SetRoutes(server); err != nil {
		slog.Error("failed to set up payment app", "error", err)
		os.Exit(1)
	}

	slog.Info("payment app configured", "delay", config.PaymentDelay, "currency", config.PaymentCurrency)
	closeCheckout := common.CloserFunc(func() error {
		checkout.Close()
		return nil
	})
	if err := common.Run(server, config.PaymentAppPort, closeCheckout, coreService); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
