// Package poller watches one completed episode for its publish trigger. Each
// poller owns exactly one persisted trigger state; several pollers run side
// by side when episodes finish close together.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/colereed/showrunner/internal/chat"
	"github.com/colereed/showrunner/internal/storage"
)

// ErrNoChannel is returned when a poller is started without a notification
// channel. The trigger signal arrives through the chat thread, so a poller
// without one could only ever expire.
var ErrNoChannel = errors.New("no notification channel to poll")

// Publisher performs the one-shot publish action once the trigger fires.
type Publisher interface {
	Publish(ctx context.Context, bundleDir string) (title, editURL, videoURL string, err error)
}

// Poller polls a thread for the publish signal until it fires, the deadline
// passes, or the operator deletes the state file.
type Poller struct {
	state     *storage.TriggerState
	store     *storage.TriggerStore
	ch        chat.Channel
	notifier  *chat.Notifier
	publisher Publisher
	emoji     string
	interval  time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// New creates a poller for state. The notifier is rebound to the state's
// thread so outcome messages land where the episode was announced.
func New(state *storage.TriggerState, store *storage.TriggerStore, ch chat.Channel, publisher Publisher, emoji string, interval time.Duration, log *slog.Logger) *Poller {
	notifier := chat.NewNotifier(ch, log)
	notifier.Rebind(chat.ThreadRef{Channel: state.ThreadChan, TS: state.ThreadTS})
	return &Poller{
		state:     state,
		store:     store,
		ch:        ch,
		notifier:  notifier,
		publisher: publisher,
		emoji:     emoji,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

// Run blocks until the trigger resolves. It returns nil on every orderly
// outcome (triggered, expired, cancelled); only context cancellation and
// storage failures surface as errors.
func (p *Poller) Run(ctx context.Context) error {
	if p.ch == nil {
		return ErrNoChannel
	}

	log := p.log.With("trigger_id", p.state.ID, "bundle", p.state.BundleDir)

	// A state resumed after the trigger already fired must not publish again.
	if p.state.Status != storage.TriggerPending {
		log.Info("trigger already resolved, nothing to poll", "status", p.state.Status)
		return nil
	}

	log.Info("watching for publish trigger",
		"emoji", p.emoji, "deadline", p.state.Deadline.Format(time.RFC3339))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		// The operator cancels by deleting the state file.
		if !p.store.Exists(p.state.ID) {
			log.Info("trigger state removed, treating as manual cancel")
			return nil
		}

		if !p.now().Before(p.state.Deadline) {
			return p.expire(ctx, log)
		}

		fired, err := p.observe(ctx)
		if err != nil {
			log.Warn("trigger poll failed, retrying next tick", "error", err)
			continue
		}
		if fired {
			return p.fire(ctx, log)
		}
	}
}

// observe checks for the emoji reaction first, then for a "publish" reply.
func (p *Poller) observe(ctx context.Context) (bool, error) {
	thread := chat.ThreadRef{Channel: p.state.ThreadChan, TS: p.state.ThreadTS}

	found, err := p.ch.PollReaction(ctx, thread, p.emoji)
	if err != nil {
		return false, err
	}
	if found {
		return true, nil
	}

	reply, err := p.ch.PollReply(ctx, thread, p.state.CreatedAt)
	if err != nil {
		return false, err
	}
	if reply != nil && strings.EqualFold(strings.TrimSpace(reply.Text), "publish") {
		return true, nil
	}
	return false, nil
}

// fire persists the triggered status before publishing. If the process dies
// between the two steps the episode stays unpublished rather than publishing
// twice on restart.
func (p *Poller) fire(ctx context.Context, log *slog.Logger) error {
	if err := p.store.MarkTriggered(p.state); err != nil {
		if errors.Is(err, storage.ErrNotPending) || errors.Is(err, storage.ErrTriggerNotFound) {
			log.Info("trigger consumed elsewhere, skipping publish", "error", err)
			return nil
		}
		return err
	}

	log.Info("publish trigger fired")
	p.notifier.PublishStarted(ctx)

	title, editURL, videoURL, err := p.publisher.Publish(ctx, p.state.BundleDir)
	if err != nil {
		// State stays triggered: retry is manual, never automatic.
		log.Error("publish failed", "error", err)
		p.notifier.PublishFailed(ctx, err)
		return nil
	}

	log.Info("draft post created", "title", title, "edit_url", editURL)
	p.notifier.PublishSucceeded(ctx, title, editURL, videoURL)
	return p.store.Delete(p.state.ID)
}

func (p *Poller) expire(ctx context.Context, log *slog.Logger) error {
	if err := p.store.MarkExpired(p.state); err != nil {
		if errors.Is(err, storage.ErrNotPending) || errors.Is(err, storage.ErrTriggerNotFound) {
			log.Info("trigger resolved before expiry could be recorded", "error", err)
			return nil
		}
		return err
	}

	log.Info("publish window expired")
	p.notifier.Expired(ctx, p.state.BundleDir)
	return p.store.Delete(p.state.ID)
}
