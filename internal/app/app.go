package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/configurator"
	"github.com/vk/girder/internal/ctxlog"
)

// envPrefix marks process environment variables that override file
// configuration. A double underscore separates namespace segments, so
// GIRDER_SESSION__TYPE becomes the session.type option.
const envPrefix = "GIRDER_"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW         io.Writer
	logger       *slog.Logger
	configurator *configurator.Configurator
	appConfig    config.Settings
	envConfig    config.Settings
	cfg          *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and feature
// set. Configuration that cannot be loaded is a fatal startup error and
// panics; the entrypoint recovers it into a clean exit.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, features ...configurator.Registration) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	appConfig := config.New()
	if cfg.ConfigPath != "" {
		loaded, err := loader.Load(ctx, cfg.ConfigPath)
		if err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		appConfig = loaded
		logger.Debug("Configuration loaded.", "path", cfg.ConfigPath, "options", len(appConfig))
	}

	if len(features) == 0 {
		features = CoreFeatures()
	}
	cfgr, err := configurator.New(features...)
	if err != nil {
		panic(err)
	}
	logger.Debug("All features registered.", "count", len(features))

	return &App{
		outW:         outW,
		logger:       logger,
		configurator: cfgr,
		appConfig:    appConfig,
		envConfig:    settingsFromEnviron(os.Environ()),
		cfg:          cfg,
	}
}

// Handler runs the bootstrap sequence and returns the assembled application
// handler: configuration merged, features configured and set up, middleware
// wrapped around the route table.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	return a.configurator.MakeHandler(ctx, a.routes(), a.appConfig, a.envConfig)
}

// Configurator returns the application's configurator. This is primarily for
// testing and embedders that register hooks before starting the app.
func (a *App) Configurator() *configurator.Configurator {
	return a.configurator
}

// settingsFromEnviron translates GIRDER_ environment variables into settings
// overrides. Values stay strings; feature converters coerce them later.
func settingsFromEnviron(environ []string) config.Settings {
	out := config.New()
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		out[key] = value
	}
	return out
}
