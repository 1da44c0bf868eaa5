package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsbrief/internal/app"
	"github.com/deusflow/newsbrief/internal/config"
	"github.com/deusflow/newsbrief/internal/logger"
)

func main() {
	var root = &cobra.Command{
		Use:           "newsbrief",
		Short:         "Aggregate and summarize tech and finance news",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCMD(), fetchCMD(), searchCMD())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads configuration and builds the app. Missing credentials are
// fatal for every command.
func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	logger.Init(cfg != nil && cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return app.New(ctx, cfg)
}
