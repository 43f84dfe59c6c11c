package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/colereed/showrunner/internal/chat"
	"github.com/colereed/showrunner/internal/pipeline"
	"github.com/colereed/showrunner/internal/poller"
	"github.com/colereed/showrunner/internal/publish"
	"github.com/colereed/showrunner/internal/storage"
)

var (
	pollerStateID  string
	pollerInterval time.Duration
	pollerTimeout  time.Duration
)

var pollerCmd = &cobra.Command{
	Use:   "poller",
	Short: "Poll pending publish triggers",
	Long: `Poller resumes publish-trigger polling for episodes whose pipeline run has
ended. Without flags it polls every pending trigger; --state polls one.

Deleting a trigger's state file cancels it. A trigger that was already
consumed is skipped, never published twice.`,
	RunE: runPoller,
}

func init() {
	pollerCmd.Flags().StringVar(&pollerStateID, "state", "", "poll only the trigger with this ID")
	pollerCmd.Flags().DurationVar(&pollerInterval, "interval", 0, "override the poll interval")
	pollerCmd.Flags().DurationVar(&pollerTimeout, "timeout", 0, "override the publish window, measured from trigger creation")
}

func newTriggerPoller(state *storage.TriggerState, store *storage.TriggerStore, ch chat.Channel, svc *publish.Service) *poller.Poller {
	interval := cfg.PollInterval()
	if pollerInterval > 0 {
		interval = pollerInterval
	}
	if pollerTimeout > 0 {
		state.Deadline = state.CreatedAt.Add(pollerTimeout)
	}
	return poller.New(state, store, ch, servicePublisher{svc}, cfg.Poller.Emoji, interval, logger)
}

func runPoller(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := storage.NewTriggerStore(pipeline.TriggerDir(cfg))

	var states []*storage.TriggerState
	if pollerStateID != "" {
		state, err := store.Load(pollerStateID)
		if err != nil {
			return err
		}
		states = append(states, state)
	} else {
		var err error
		states, err = store.List()
		if err != nil {
			return err
		}
		if len(states) == 0 {
			fmt.Println("No pending publish triggers.")
			return nil
		}
	}

	svc, err := newPublishService()
	if err != nil {
		return err
	}
	ch := newChannel()
	if ch == nil {
		return fmt.Errorf("chat is not configured: publish triggers are observed through the chat thread (set SLACK_BOT_TOKEN and SLACK_CHANNEL_ID)")
	}

	var wg sync.WaitGroup
	for _, state := range states {
		wg.Add(1)
		go func(state *storage.TriggerState) {
			defer wg.Done()
			p := newTriggerPoller(state, store, ch, svc)
			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("poller stopped", "trigger_id", state.ID, "error", err)
			}
		}(state)
	}
	wg.Wait()
	return nil
}
