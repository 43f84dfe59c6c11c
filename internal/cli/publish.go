package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/colereed/showrunner/internal/bundle"
)

var publishBundle string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Create a CMS draft post from an episode bundle",
	Long: `Publish creates a draft post from the most recent episode bundle, or from
the bundle given with --bundle. This is the manual path for episodes whose
publish window expired or whose triggered publish failed.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishBundle, "bundle", "", "bundle directory to publish (default: most recent)")
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir := publishBundle
	if dir == "" {
		var err error
		dir, err = bundle.Latest(cfg.Dirs.Outputs)
		if err != nil {
			return err
		}
	}

	svc, err := newPublishService()
	if err != nil {
		return err
	}

	fmt.Printf("Publishing %s...\n", dir)
	post, err := svc.Run(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Printf("Draft created: %s\n", post.Title)
	fmt.Printf("Edit: %s\n", post.EditURL)
	if post.VideoURL != "" {
		fmt.Printf("Video: %s\n", post.VideoURL)
	}
	return nil
}
