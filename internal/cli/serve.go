package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/colereed/showrunner/internal/webhook"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the publish webhook",
	Long: `Serve exposes POST /publish, which publishes the most recent episode bundle
as a draft post, and GET /health. It is meant to sit behind a phone shortcut
or an automation hook, not on the open internet.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8090", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newPublishService()
	if err != nil {
		return err
	}

	server := webhook.NewServer(cfg.Dirs.Outputs, svc, logger)
	err = server.ListenAndServe(ctx, serveAddr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
