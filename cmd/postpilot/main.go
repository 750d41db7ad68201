package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coopco/postpilot/internal/bus"
	"github.com/coopco/postpilot/internal/config"
	"github.com/coopco/postpilot/internal/console"
	"github.com/coopco/postpilot/internal/health"
	"github.com/coopco/postpilot/internal/providers"
	"github.com/coopco/postpilot/internal/publisher"
	"github.com/coopco/postpilot/internal/scheduler"
	"github.com/coopco/postpilot/internal/session"
	"github.com/coopco/postpilot/internal/store"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "postpilot",
		Short:         "AI-assisted social posting from your terminal",
		Long:          "Postpilot generates social media posts with an AI model, publishes them through a local gateway, and can schedule them for later.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), cfgFile, verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.postpilot/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(&cfgFile, &verbose))
	return rootCmd
}

// setupLogging routes slog to stderr so log lines never interleave with
// menu prompts on stdout.
func setupLogging(verbose bool, base slog.Level) {
	level := base
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// runInteractive wires up the client side: the HTTP bridge to the
// gateway, durable stores, scheduler recovery, and the menu loop.
func runInteractive(ctx context.Context, cfgFile string, verbose bool) error {
	setupLogging(verbose, slog.LevelWarn)

	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}

	text, err := providers.NewTextClient(cfg)
	if err != nil {
		return err
	}

	history := store.NewHistoryStore(filepath.Join(cfg.DataDir, "post_history.json"))
	errlog := store.NewErrorLog(filepath.Join(cfg.DataDir, "error_log.txt"))
	schedStore := store.NewScheduleStore(filepath.Join(cfg.DataDir, "scheduled_posts.json"))
	sessions := session.NewManager(filepath.Join(cfg.DataDir, "sessions"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	msgBus := bus.NewMessageBus(16)
	defer msgBus.Close()
	msgBus.Subscribe(func(n bus.Notice) {
		fmt.Printf("\n%s\n", n.Text)
	})
	go msgBus.DispatchNotices(ctx)

	pub := publisher.NewClient(cfg.Gateway.URL)

	monitor := health.NewMonitor(cfg.Gateway.URL, msgBus, 30*time.Second)
	monitor.Start(ctx)
	defer monitor.Stop()

	sched := scheduler.NewService(schedStore, history, errlog, pub, msgBus)
	go sched.Run(ctx)
	sched.Recover()
	defer sched.Stop()

	recurring := scheduler.NewRecurring(filepath.Join(cfg.DataDir, "recurring_posts.json"), pub, history, errlog, msgBus)
	if err := recurring.LoadFromDisk(); err != nil {
		slog.Warn("failed to load recurring posts", "error", err)
	}
	recurring.Start()
	defer recurring.Stop()

	ui := console.New(console.Config{
		In:        os.Stdin,
		Out:       os.Stdout,
		Text:      text,
		Publisher: pub,
		History:   history,
		Scheduler: sched,
		Recurring: recurring,
		ErrorLog:  errlog,
		Sessions:  sessions,
	})
	return ui.Run(ctx)
}
