package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"storefront/internal/handler"
	"storefront/internal/middleware"
)

func (c *cli) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and the MCP endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				c.cfg.Port = port
			}
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port; overrides PORT")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	logger := c.logger
	app, err := c.open(ctx)
	if err != nil {
		return err
	}

	logger.Info("configuration loaded",
		slog.String("environment", c.cfg.Environment),
		slog.String("api", c.cfg.API.BaseURL),
		slog.String("session_backend", c.cfg.Session.Backend),
		slog.Bool("signed_in", app.Session.Authenticated()),
	)

	// Warm the catalog; a failure here is retried on first request.
	if err := app.EnsureCatalog(ctx); err != nil {
		logger.Warn("catalog preload failed", slog.Any("error", err))
	}

	h := handler.New(app, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Request IDs first so recovery and access logs can both report them.
	httpHandler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logging(logger),
	)(mux)

	server := &http.Server{
		Addr:         ":" + c.cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Speak MCP over stdin/stdout",
		Long: `Runs the storefront tools as an MCP server on stdin/stdout, for agents
that launch the storefront as a subprocess. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := c.open(ctx)
			if err != nil {
				return err
			}
			server := handler.New(app, c.logger).NewMCPServer()
			c.logger.Info("mcp server on stdio")
			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
