package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Notifier posts lifecycle messages for one transcript job, keeping every
// message in the job's thread. Every terminal state gets a distinct message
// so the operator never has to infer pipeline status from logs.
//
// A Notifier with a nil channel is a no-op, which keeps the pipeline code
// free of "is chat enabled" checks. Send failures are logged and swallowed:
// a notification must never abort processing.
type Notifier struct {
	ch     Channel
	log    *slog.Logger
	thread ThreadRef
}

// NewNotifier creates a notifier. ch may be nil when chat is disabled.
func NewNotifier(ch Channel, log *slog.Logger) *Notifier {
	return &Notifier{ch: ch, log: log}
}

// Thread returns the job's thread ref, zero until the first post succeeds.
func (n *Notifier) Thread() ThreadRef {
	return n.thread
}

// Rebind attaches the notifier to an existing thread, used when a poller
// resumes a persisted trigger after a restart.
func (n *Notifier) Rebind(thread ThreadRef) {
	n.thread = thread
}

// Enabled reports whether messages actually go anywhere.
func (n *Notifier) Enabled() bool {
	return n != nil && n.ch != nil
}

func (n *Notifier) post(ctx context.Context, text string) {
	if !n.Enabled() {
		return
	}
	thread, err := n.ch.Post(ctx, text, n.thread)
	if err != nil {
		n.log.Warn("notification failed", "error", err)
		return
	}
	if n.thread.IsZero() {
		n.thread = thread
	}
}

// ProcessingStarted opens the job thread.
func (n *Notifier) ProcessingStarted(ctx context.Context, filename string) {
	n.post(ctx, fmt.Sprintf("*Processing transcript*\n`%s`\nGenerating title options...", filename))
}

// TitlesReady presents the candidate set and the accepted reply forms.
func (n *Notifier) TitlesReady(ctx context.Context, titles []string) {
	var b strings.Builder
	b.WriteString("*Title options ready*\n\n")
	for i, title := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	fmt.Fprintf(&b, "\n*Reply with:*\n• A number (1-%d) to select that title\n• `f <feedback>` for a new set\n• `TITLE: Your Custom Title`\n• `q` to cancel", len(titles))
	n.post(ctx, b.String())
}

// InvalidReply nudges the operator after an unrecognized reply.
func (n *Notifier) InvalidReply(ctx context.Context, max int) {
	n.post(ctx, fmt.Sprintf("Unrecognized reply. Use a number (1-%d), `f <feedback>`, `TITLE: ...`, or `q`.", max))
}

// TitleSelected confirms the selection.
func (n *Notifier) TitleSelected(ctx context.Context, title string) {
	n.post(ctx, fmt.Sprintf("*Selected title*\n`%s`\nGenerating description, teaser and article...", title))
}

// Regenerating announces a feedback round.
func (n *Notifier) Regenerating(ctx context.Context) {
	n.post(ctx, "Generating new titles from your feedback...")
}

// ParseWarnings surfaces missing or malformed fields so the operator notices
// the gap before publishing.
func (n *Notifier) ParseWarnings(ctx context.Context, step string, warnings []string) {
	n.post(ctx, fmt.Sprintf("*Heads up:* the %s step came back incomplete (%s). The bundle was written with the gap flagged.", step, strings.Join(warnings, ", ")))
}

// Completed announces the bundle and how to trigger publishing.
func (n *Notifier) Completed(ctx context.Context, bundleDir, emoji string, window time.Duration) {
	n.post(ctx, fmt.Sprintf("*Processing complete*\nBundle: `%s`\n\nReact with :%s: or reply `publish` within %s to create the draft post.", bundleDir, emoji, formatWindow(window)))
}

func formatWindow(d time.Duration) string {
	if h := int(d.Hours()); h >= 1 && d == time.Duration(h)*time.Hour {
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}

// TriggerFailed reports that the bundle was written but its publish trigger
// could not be registered. The transcript stays marked processed, so the
// operator has to create the draft by hand.
func (n *Notifier) TriggerFailed(ctx context.Context, bundleDir string, err error) {
	n.post(ctx, fmt.Sprintf("*Error registering publish trigger*\nBundle: `%s`\nError: `%v`\nThe bundle will not be polled; create the draft with `showrunner publish --bundle %s`.", bundleDir, err, bundleDir))
}

// Cancelled announces that the job was skipped and can be retried.
func (n *Notifier) Cancelled(ctx context.Context, filename string) {
	n.post(ctx, fmt.Sprintf("*Processing cancelled*\n`%s` was not processed and can be dropped again later.", filename))
}

// Failed reports a processing error; the file is not marked processed.
func (n *Notifier) Failed(ctx context.Context, filename string, err error) {
	n.post(ctx, fmt.Sprintf("*Error processing transcript*\nFile: `%s`\nError: `%v`\nThe file was not marked processed; fix the issue and re-run.", filename, err))
}

// PublishStarted announces the triggered publish action.
func (n *Notifier) PublishStarted(ctx context.Context) {
	n.post(ctx, "*Publishing draft post...*")
}

// PublishSucceeded reports the created draft.
func (n *Notifier) PublishSucceeded(ctx context.Context, title, editURL, videoURL string) {
	n.post(ctx, fmt.Sprintf("*Draft post created*\nTitle: %s\nEdit: %s\nVideo: %s\nReview and publish it when ready.", title, editURL, videoURL))
}

// PublishFailed reports a publish failure; the trigger stays consumed.
func (n *Notifier) PublishFailed(ctx context.Context, err error) {
	n.post(ctx, fmt.Sprintf("*Publishing failed*\nError: `%v`\nRetry manually with `showrunner publish`.", err))
}

// Expired reports that the trigger window closed without a signal.
func (n *Notifier) Expired(ctx context.Context, bundleDir string) {
	n.post(ctx, fmt.Sprintf("*Publish window expired*\n`%s` was not published. Use `showrunner publish` to publish it manually.", bundleDir))
}
