package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nsai-uio/IMF-AITool/internal/api"
	"github.com/nsai-uio/IMF-AITool/internal/api/server"
	"github.com/nsai-uio/IMF-AITool/internal/config"
	"github.com/nsai-uio/IMF-AITool/internal/controller"
	"github.com/nsai-uio/IMF-AITool/internal/logger"
	"github.com/nsai-uio/IMF-AITool/internal/session"
	"github.com/nsai-uio/IMF-AITool/internal/ui"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "aitool",
		Short:         "Upload a document and ask questions about it from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	view := ui.New(cfg.Dev, cfg.File)

	if err := logger.InitLogger(cfg.Dev, cfg.LogPath, view.DebugConsole()); err != nil {
		return err
	}
	localLogger := logger.NewLogger("main")
	defer localLogger.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Stub.Enabled {
		stub := server.New(cfg.Stub, nil)
		go func() {
			if err := stub.Run(ctx); err != nil {
				localLogger.Error("Development backend stopped: ", err)
			}
		}()
	}

	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}
	localLogger.Info("Using backend ", cfg.BackendURL)

	ctrl := controller.New(client, session.NewState(), view, controller.Options{
		PollInterval: cfg.PollInterval,
	})
	view.Bind(ctrl)

	return view.Run(ctx)
}
