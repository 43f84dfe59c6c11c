package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/colereed/showrunner/internal/pipeline"
	"github.com/colereed/showrunner/internal/poller"
	"github.com/colereed/showrunner/internal/selection"
	"github.com/colereed/showrunner/internal/storage"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the transcripts directory and process new files",
	Long: `Watch scans the transcripts directory on an interval and runs every new
transcript through the full pipeline. Completed episodes each get a publish
poller; pollers left over from a previous run are resumed on startup.

Title selection goes to the chat channel when configured, otherwise to the
terminal.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := newGenerator(ctx)
	if err != nil {
		return err
	}
	ch := newChannel()

	coord := pipeline.NewCoordinator(cfg, gen, ch, logger)
	if ch == nil {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return pipeline.ErrNoPrompter
		}
		coord.UsePrompter(selection.NewCLIPrompter(os.Stdin, os.Stdout))
	}

	svc, err := newPublishService()
	if err != nil {
		// Pollers cannot publish without CMS credentials. Trigger states are
		// still written, so they resume once credentials are set.
		logger.Warn("publish disabled, triggers will not be polled", "error", err)
	}
	if ch == nil && svc != nil {
		// The trigger signal arrives through the chat thread.
		logger.Warn("chat disabled, triggers will not be polled until it is configured")
	}

	var pollers sync.WaitGroup
	startPoller := func(state *storage.TriggerState) {
		if svc == nil || ch == nil {
			return
		}
		pollers.Add(1)
		go func() {
			defer pollers.Done()
			p := poller.New(state, coord.Triggers(), ch, servicePublisher{svc}, cfg.Poller.Emoji, cfg.PollInterval(), logger)
			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("poller stopped", "trigger_id", state.ID, "error", err)
			}
		}()
	}

	// Resume pollers for episodes completed before the last shutdown.
	states, err := coord.Triggers().List()
	if err != nil {
		return err
	}
	for _, state := range states {
		logger.Info("resuming publish poller", "trigger_id", state.ID, "bundle", state.BundleDir)
		startPoller(state)
	}

	watcher := pipeline.NewWatcher(coord, cfg.Dirs.Transcripts, cfg.WatchInterval(), startPoller, logger)
	err = watcher.Run(ctx)

	stop()
	pollers.Wait()

	if errors.Is(err, context.Canceled) {
		logger.Info("watcher stopped")
		return nil
	}
	return err
}
