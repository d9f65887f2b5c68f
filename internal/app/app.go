package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/injurylens/internal/config"
	"github.com/vk/injurylens/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	ctx       context.Context
	appConfig *Config
	model     *config.Model

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and the parsed
// workspace model.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the workspace into the format-agnostic model first.
	model, err := loader.Load(ctx, appConfig.WorkspacePath)
	if err != nil {
		// A failure to load the workspace is a fatal startup error.
		panic(fmt.Errorf("failed to load workspace: %w", err))
	}
	logger.Debug("Workspace loaded and translated into unified model.",
		"datasets", len(model.Datasets), "views", len(model.Views))

	return &App{
		outW:      outW,
		logger:    logger,
		ctx:       ctx,
		appConfig: appConfig,
		model:     model,
	}
}

// Model returns the loaded workspace model. This is primarily for testing.
func (app *App) Model() *config.Model {
	return app.model
}
