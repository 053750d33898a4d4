package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/server"
	"github.com/rcliao/ryan/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Run:   runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default: $RYAN_HTTP_PORT or 8000)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.HTTPPort = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, cfg, true)
	defer a.Close()

	deps := server.Deps{
		Assistant: a.assistant,
		Memory:    a.memory,
		Plugins:   a.plugins,
		LogFile:   cfg.LogFile,
		ModelOK:   a.modelAvailable(),
	}
	if a.store != nil {
		deps.Stats = func(ctx context.Context) (*store.Stats, error) {
			return a.store.Stats(ctx, cfg.DBPath)
		}
	}

	if err := server.New(deps, a.log).Run(ctx, cfg.GetHTTPAddr()); err != nil {
		exitErr("serve", err)
	}
}
