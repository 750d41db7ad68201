package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coopco/postpilot/internal/config"
	"github.com/coopco/postpilot/internal/platform"
	"github.com/coopco/postpilot/internal/publisher"
	"github.com/coopco/postpilot/internal/server"
	"github.com/coopco/postpilot/internal/store"
)

func newServeCmd(cfgFile *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the publishing gateway and tool server",
		Long:  "Starts the HTTP gateway that publishes posts to the configured platforms and exposes the tool surface over SSE.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfgFile, *verbose)
		},
	}
}

func runServe(ctx context.Context, cfgFile string, verbose bool) error {
	setupLogging(verbose, slog.LevelInfo)

	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}

	platforms, err := platform.FromConfig(cfg)
	if err != nil {
		return err
	}

	errlog := store.NewErrorLog(filepath.Join(cfg.DataDir, "error_log.txt"))
	gateway := publisher.NewGateway(platforms)

	tools := server.NewRegistry()
	tools.Register(&server.AddTwoNumbersTool{})
	tools.Register(server.NewCreatePostTool(gateway))
	mcp := server.NewMCPServer("postpilot", version, tools)

	srv := server.New(gateway, mcp, errlog)
	addr := fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Router()}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("gateway listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
