package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/injurylens/internal/ctxlog"
	"github.com/vk/injurylens/internal/loader"
	"github.com/vk/injurylens/internal/notify"
	"github.com/vk/injurylens/internal/session"
)

// Run executes the main application logic based on the provided configuration.
func (app *App) Run(ctx context.Context, inR io.Reader) error {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	app.ctx = ctx
	app.logger.Debug("App.Run method started.")

	app.healthCheckServer()
	defer func() { _ = app.closeHealthCheckServer() }()

	app.logger.Debug("Loading datasets from workspace model...")
	st, err := loader.Load(ctx, app.model)
	if err != nil {
		return fmt.Errorf("failed to load datasets: %w", err)
	}

	var opts []session.Option
	if app.model.Notify != nil {
		notifier, err := notify.NewSocketIO(ctx, app.model.Notify)
		if err != nil {
			return fmt.Errorf("failed to connect notifier: %w", err)
		}
		opts = append(opts, session.WithNotifier(notifier))
	}

	sess, err := session.New(ctx, st, app.model, opts...)
	if err != nil {
		return fmt.Errorf("failed to build session graph: %w", err)
	}
	defer sess.Close()

	app.logger.Info("📊 Session ready.", "records", st.Len(), "views", len(sess.ViewNames()))
	return app.repl(ctx, inR, sess)
}
