package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/colereed/showrunner/internal/pipeline"
	"github.com/colereed/showrunner/internal/selection"
	"github.com/colereed/showrunner/internal/storage"
)

var processPoll bool

var processCmd = &cobra.Command{
	Use:   "process <transcript>",
	Short: "Process a single transcript file",
	Long: `Process runs one transcript through the pipeline without watching the
directory. Title selection happens in the terminal when run interactively,
otherwise through the chat channel.

By default the publish trigger is registered but not polled; start it later
with "showrunner poller" or pass --poll to block until it resolves.

A transcript that was already processed is rejected. To reprocess it, remove
its entry from the processed set file first.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processPoll, "poll", false, "poll the publish trigger after processing")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := newGenerator(ctx)
	if err != nil {
		return err
	}
	ch := newChannel()

	coord := pipeline.NewCoordinator(cfg, gen, ch, logger)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		coord.UsePrompter(selection.NewCLIPrompter(os.Stdin, os.Stdout))
	} else if ch == nil {
		return pipeline.ErrNoPrompter
	}

	state, err := coord.Run(ctx, args[0])
	if err != nil {
		if errors.Is(err, selection.ErrCancelled) {
			fmt.Println("Cancelled. The transcript was not marked processed.")
			return nil
		}
		return err
	}

	fmt.Printf("Bundle written: %s\n", state.BundleDir)
	fmt.Printf("Publish trigger: %s (deadline %s)\n", state.ID, state.Deadline.Format("2006-01-02 15:04"))

	if !processPoll {
		fmt.Printf("Start polling with: showrunner poller --state %s\n", state.ID)
		return nil
	}
	return runPollerFor(ctx, state, coord.Triggers())
}

// runPollerFor blocks on a single trigger. Shared with the poller command.
func runPollerFor(ctx context.Context, state *storage.TriggerState, store *storage.TriggerStore) error {
	svc, err := newPublishService()
	if err != nil {
		return err
	}
	ch := newChannel()
	if ch == nil {
		return fmt.Errorf("chat is not configured: the publish trigger is observed through the chat thread (set SLACK_BOT_TOKEN and SLACK_CHANNEL_ID)")
	}

	p := newTriggerPoller(state, store, ch, svc)
	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
