package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	transport "github.com/goliatone/go-staffdesk/internal/transport/http"
	"github.com/goliatone/go-staffdesk/pkg/render/template/gotemplate"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the job admin form and the email preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(app.Ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			return serve(ctx, app, listener)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// serve runs the admin server on listener until ctx is done.
func serve(ctx context.Context, app *AppContext, listener net.Listener) error {
	form, ageConsent, err := app.Renderers()
	if err != nil {
		listener.Close()
		return err
	}
	registry, err := Registry(form, ageConsent)
	if err != nil {
		listener.Close()
		return err
	}
	backend, err := app.Backend()
	if err != nil {
		listener.Close()
		return err
	}
	defer backend.Close()

	logger := app.Logger.Named("http")
	handler, err := transport.NewRouter(transport.Config{
		Event:         &app.Cfg.Event,
		Renderers:     registry,
		Jobs:          backend.Jobs,
		Departments:   backend.Departments,
		Defaults:      backend.Defaults,
		Attendees:     backend.Attendees,
		Theme:         app.Theme(),
		Logger:        logger,
		SecureCookies: app.Cfg.Server.SecureCookies,
	})
	if err != nil {
		listener.Close()
		return err
	}

	if dir := app.Cfg.Server.TemplatesDir; dir != "" && app.Cfg.Server.WatchTemplates {
		caches := templateCaches{form.Templates(), ageConsent.Templates()}
		watcher, err := gotemplate.NewWatcher(dir, caches, app.Logger)
		if err != nil {
			listener.Close()
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			listener.Close()
			return err
		}
		defer watcher.Stop()
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("server listening", zap.String("addr", listener.Addr().String()))
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
