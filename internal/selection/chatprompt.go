package selection

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/colereed/showrunner/internal/chat"
)

// ChatPrompter presents candidates in the job's chat thread and polls for
// the operator's reply. It waits indefinitely; cancellation comes from the
// context (operator out-of-band cancel) or a "q" reply.
type ChatPrompter struct {
	notifier *chat.Notifier
	ch       chat.Channel
	interval time.Duration
	log      *slog.Logger
}

// NewChatPrompter creates a prompter posting through notifier's thread.
func NewChatPrompter(ch chat.Channel, notifier *chat.Notifier, interval time.Duration, log *slog.Logger) *ChatPrompter {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ChatPrompter{notifier: notifier, ch: ch, interval: interval, log: log}
}

// Present posts the candidate set to the thread and polls replies until one
// classifies as a valid input. Invalid replies get a help message; channel
// errors are logged and retried on the next tick, never surfaced.
func (p *ChatPrompter) Present(ctx context.Context, titles []string) (Input, error) {
	p.notifier.TitlesReady(ctx, titles)
	since := time.Now()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Input{}, ctx.Err()
		case <-ticker.C:
		}

		reply, err := p.ch.PollReply(ctx, p.notifier.Thread(), since)
		if err != nil {
			var chErr *chat.ChannelError
			if errors.As(err, &chErr) {
				p.log.Warn("reply poll failed, retrying", "error", err)
				continue
			}
			return Input{}, err
		}
		if reply == nil {
			continue
		}

		// Advance the cursor to the consumed reply's own timestamp so a
		// help-message round does not re-read it. The server clock decides
		// what counts as newer, not the local one.
		if at := reply.At(); !at.IsZero() {
			since = at
		} else {
			since = time.Now()
		}

		input := ParseInput(reply.Text, len(titles))
		if input.Kind == KindInvalid {
			p.log.Info("unrecognized chat reply", "text", reply.Text)
			p.notifier.InvalidReply(ctx, len(titles))
			continue
		}
		if input.Kind == KindFeedback {
			p.notifier.Regenerating(ctx)
		}
		return input, nil
	}
}
