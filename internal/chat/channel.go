// Package chat abstracts the notification channel used for title selection
// and publish-trigger polling.
package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ThreadRef identifies a message thread. One thread is created per transcript
// job and reused for every message in that job's lifecycle; it is the only
// correlation between a reply and the job it concerns.
type ThreadRef struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// IsZero reports whether the ref has been assigned.
func (r ThreadRef) IsZero() bool {
	return r.TS == ""
}

// Reply is a human message observed in a thread.
type Reply struct {
	Text string
	User string
	TS   string
}

// At converts the provider timestamp to a time, zero when it cannot be
// parsed. Cursors built from it follow the server clock, so local clock
// skew cannot hide later replies.
func (r *Reply) At() time.Time {
	seconds, _, _ := strings.Cut(r.TS, ".")
	unix, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// Channel is the boundary the orchestrator depends on. Implementations must
// treat malformed provider responses as "no event yet", never as fatal:
// polls run unattended for hours.
type Channel interface {
	// Post sends a message. A zero thread starts a new thread; the returned
	// ref addresses it for all later calls.
	Post(ctx context.Context, text string, thread ThreadRef) (ThreadRef, error)
	// PollReply returns the oldest human reply in the thread newer than
	// since, or nil when there is none yet.
	PollReply(ctx context.Context, thread ThreadRef, since time.Time) (*Reply, error)
	// PollReaction reports whether the named emoji reaction is present on
	// the thread's root message.
	PollReaction(ctx context.Context, thread ThreadRef, emoji string) (bool, error)
}

// ChannelError wraps a transport or decoding failure from the provider.
// Callers log it and treat the poll as a no-op; the next tick retries.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("chat %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
