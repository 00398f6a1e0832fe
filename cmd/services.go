package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/xvierd/countdown-cli/internal/adapters/notification"
	"github.com/xvierd/countdown-cli/internal/adapters/storage"
	"github.com/xvierd/countdown-cli/internal/config"
	"github.com/xvierd/countdown-cli/internal/logging"
	"github.com/xvierd/countdown-cli/internal/ports"
	"github.com/xvierd/countdown-cli/internal/services"
	"go.uber.org/zap"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	storage  ports.Storage
	notifier *notification.Notifier
	config   *config.Config
	logger   *zap.Logger

	// configErr is set when the config file could not be loaded and
	// defaults are in use.
	configErr error
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	// Load configuration
	var err error
	app.config, err = config.Load()
	app.configErr = err
	if err != nil {
		// If config loading fails, use defaults
		app.config = config.DefaultConfig()
	}

	if logFile != "" {
		app.config.Log.File = logFile
	}
	app.logger, err = logging.New(app.config.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if app.configErr != nil {
		app.logger.Warn("using default configuration", zap.Error(app.configErr))
	}

	app.notifier = notification.New(&app.config.Notifications)

	path := dbPath
	if path == "" {
		path = config.GetDBPath(app.config)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	app.storage, err = storage.New(path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.logger.Debug("services initialized", zap.String("db", path))
	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.logger != nil {
		_ = app.logger.Sync()
	}
	if app.storage != nil {
		err := app.storage.Close()
		app.storage = nil
		return err
	}
	return nil
}

// newCountdownService wires a controller to the configured adapters.
func newCountdownService() *services.CountdownService {
	opts := []services.Option{
		services.WithLogger(app.logger),
		services.WithNotifier(app.notifier),
	}
	if app.config.History.Enabled {
		opts = append(opts, services.WithHistory(app.storage.History()))
	}
	return services.NewCountdownService(opts...)
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		signal.Stop(sigChan)
		cancel()
	}()

	return ctx
}
