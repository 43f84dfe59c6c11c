package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type recordingChannel struct {
	posts  []string
	failed bool
}

func (c *recordingChannel) Post(_ context.Context, text string, thread ThreadRef) (ThreadRef, error) {
	if c.failed {
		return ThreadRef{}, &ChannelError{Op: "post", Err: errors.New("down")}
	}
	c.posts = append(c.posts, text)
	if thread.IsZero() {
		return ThreadRef{Channel: "C123", TS: "1.000"}, nil
	}
	return thread, nil
}

func (c *recordingChannel) PollReply(context.Context, ThreadRef, time.Time) (*Reply, error) {
	return nil, nil
}

func (c *recordingChannel) PollReaction(context.Context, ThreadRef, string) (bool, error) {
	return false, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_ThreadsUnderFirstPost(t *testing.T) {
	ch := &recordingChannel{}
	n := NewNotifier(ch, discard())
	ctx := context.Background()

	if !n.Thread().IsZero() {
		t.Error("thread set before first post")
	}

	n.ProcessingStarted(ctx, "ep1.txt")
	if n.Thread().TS != "1.000" {
		t.Fatalf("thread = %+v", n.Thread())
	}

	n.TitlesReady(ctx, []string{"Alpha", "Beta"})
	if len(ch.posts) != 2 {
		t.Fatalf("posts = %d", len(ch.posts))
	}
	if !strings.Contains(ch.posts[1], "1. Alpha") || !strings.Contains(ch.posts[1], "2. Beta") {
		t.Errorf("titles post = %q", ch.posts[1])
	}
	if !strings.Contains(ch.posts[1], "(1-2)") {
		t.Errorf("reply hint not sized to candidate set: %q", ch.posts[1])
	}
}

func TestNotifier_NilChannelIsNoop(t *testing.T) {
	n := NewNotifier(nil, discard())
	ctx := context.Background()

	// None of these may panic or error.
	n.ProcessingStarted(ctx, "ep1.txt")
	n.TitlesReady(ctx, []string{"Alpha"})
	n.Completed(ctx, "/outputs/ep1", "outbox_tray", 24*time.Hour)
	n.Failed(ctx, "ep1.txt", errors.New("boom"))

	if n.Enabled() {
		t.Error("Enabled() = true with nil channel")
	}
}

func TestNotifier_PostFailureIsSwallowed(t *testing.T) {
	ch := &recordingChannel{failed: true}
	n := NewNotifier(ch, discard())

	// A notification failure must never stop the pipeline.
	n.ProcessingStarted(context.Background(), "ep1.txt")
	if !n.Thread().IsZero() {
		t.Error("thread set from failed post")
	}
}

func TestNotifier_CompletedNamesWindow(t *testing.T) {
	ch := &recordingChannel{}
	n := NewNotifier(ch, discard())

	n.Completed(context.Background(), "/outputs/ep1", "outbox_tray", 48*time.Hour)
	if !strings.Contains(ch.posts[0], "within 48 hours") {
		t.Errorf("post = %q", ch.posts[0])
	}
	if !strings.Contains(ch.posts[0], ":outbox_tray:") {
		t.Errorf("post missing emoji hint: %q", ch.posts[0])
	}
}

func TestFormatWindow(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{24 * time.Hour, "24 hours"},
		{time.Hour, "1 hour"},
		{90 * time.Minute, "1h30m0s"},
	}
	for _, tt := range tests {
		if got := formatWindow(tt.d); got != tt.want {
			t.Errorf("formatWindow(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
