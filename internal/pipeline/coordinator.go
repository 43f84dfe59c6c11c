// Package pipeline runs a transcript from drop to finished episode bundle:
// title selection, sequential content generation, atomic bundle write, and
// registration of the publish trigger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/colereed/showrunner/internal/bundle"
	"github.com/colereed/showrunner/internal/chat"
	"github.com/colereed/showrunner/internal/config"
	"github.com/colereed/showrunner/internal/llm"
	"github.com/colereed/showrunner/internal/parse"
	"github.com/colereed/showrunner/internal/selection"
	"github.com/colereed/showrunner/internal/storage"
)

// State file locations under the outputs directory.
const (
	processedFile = ".processed.json"
	triggerSubdir = ".pending_publish"
)

// ProcessedPath returns the processed-set file for the configured outputs dir.
func ProcessedPath(cfg config.Config) string {
	return filepath.Join(cfg.Dirs.Outputs, processedFile)
}

// TriggerDir returns the trigger-state directory for the configured outputs dir.
func TriggerDir(cfg config.Config) string {
	return filepath.Join(cfg.Dirs.Outputs, triggerSubdir)
}

// Coordinator processes one transcript at a time. Transcripts are never
// processed concurrently; only publish pollers overlap.
type Coordinator struct {
	cfg       config.Config
	gen       llm.Generator
	ch        chat.Channel
	processed *storage.ProcessedSet
	triggers  *storage.TriggerStore
	log       *slog.Logger

	// prompter overrides channel selection when set, used by the process
	// command for terminal interaction and by tests.
	prompter selection.Prompter
	now      func() time.Time
}

// NewCoordinator wires the pipeline. ch may be nil when chat is disabled.
func NewCoordinator(cfg config.Config, gen llm.Generator, ch chat.Channel, log *slog.Logger) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		gen:       gen,
		ch:        ch,
		processed: storage.NewProcessedSet(ProcessedPath(cfg)),
		triggers:  storage.NewTriggerStore(TriggerDir(cfg)),
		log:       log,
		now:       time.Now,
	}
}

// UsePrompter forces a specific title prompter instead of the chat channel.
func (c *Coordinator) UsePrompter(p selection.Prompter) {
	c.prompter = p
}

// Triggers exposes the trigger store so callers can resume pollers.
func (c *Coordinator) Triggers() *storage.TriggerStore {
	return c.triggers
}

// Processed exposes the processed set for the watcher's duplicate check.
func (c *Coordinator) Processed() *storage.ProcessedSet {
	return c.processed
}

// ErrNoPrompter is returned when neither a terminal prompter nor a chat
// channel is available for title selection.
var ErrNoPrompter = errors.New("no title prompter available: run interactively or configure chat")

// Run processes the transcript at path and returns the registered publish
// trigger. Cancellation and failures leave the file unprocessed so it can be
// picked up again; only a completed bundle marks it processed.
func (c *Coordinator) Run(ctx context.Context, path string) (*storage.TriggerState, error) {
	base := filepath.Base(path)
	log := c.log.With("transcript", base)

	seen, err := c.processed.Contains(base)
	if err != nil {
		return nil, err
	}
	if seen {
		return nil, fmt.Errorf("%w: %s", storage.ErrAlreadyProcessed, base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	transcript := string(data)
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("transcript %s is empty", base)
	}

	notifier := chat.NewNotifier(c.ch, log)
	notifier.ProcessingStarted(ctx, base)
	log.Info("processing transcript", "bytes", len(data))

	prompter := c.prompter
	if prompter == nil {
		if c.ch == nil {
			return nil, ErrNoPrompter
		}
		prompter = selection.NewChatPrompter(c.ch, notifier, 0, log)
	}

	title, err := selection.NewMachine(c.gen, log).Run(ctx, transcript, prompter)
	if err != nil {
		if errors.Is(err, selection.ErrCancelled) {
			log.Info("title selection cancelled, transcript left unprocessed")
			notifier.Cancelled(ctx, base)
			return nil, err
		}
		notifier.Failed(ctx, base, err)
		return nil, err
	}
	log.Info("title confirmed", "title", title)
	notifier.TitleSelected(ctx, title)

	gc := llm.GenContext{
		Transcript:    transcript,
		Title:         title,
		StyleExamples: c.styleExamples(),
	}

	// Generation is sequential so later steps can reuse earlier output
	// verbatim instead of regenerating it.
	descRaw, descResult, err := c.step(ctx, notifier, llm.StepDescription, gc)
	if err != nil {
		notifier.Failed(ctx, base, err)
		return nil, err
	}
	gc.Hook = descResult.Get(parse.FieldHook)

	teaserRaw, teaserResult, err := c.step(ctx, notifier, llm.StepTeaser, gc)
	if err != nil {
		notifier.Failed(ctx, base, err)
		return nil, err
	}
	gc.Teaser = teaserResult.Get(parse.FieldTeaser)

	articleRaw, articleResult, err := c.step(ctx, notifier, llm.StepArticle, gc)
	if err != nil {
		notifier.Failed(ctx, base, err)
		return nil, err
	}

	tmpl, err := LoadTemplate(c.cfg.Templates.Description)
	if err != nil {
		notifier.Failed(ctx, base, err)
		return nil, err
	}

	artifacts := bundle.Artifacts{
		Title:       title,
		Description: tmpl.Populate(descResult),
		Keywords:    descResult.Get(parse.FieldKeywords),
		Teaser:      teaserResult.Get(parse.FieldTeaser),
		Article:     articleResult.Get(parse.FieldArticle),
		Raw: map[string]string{
			"description": descRaw,
			"teaser":      teaserRaw,
			"article":     articleRaw,
		},
	}

	now := c.now()
	baseName := strings.TrimSuffix(base, filepath.Ext(base))
	dir, err := bundle.Write(c.cfg.Dirs.Outputs, baseName, artifacts, now)
	if err != nil {
		notifier.Failed(ctx, base, err)
		return nil, err
	}
	log.Info("bundle written", "bundle", dir)

	if err := c.processed.Mark(base); err != nil {
		notifier.Failed(ctx, base, err)
		return nil, err
	}

	thread := notifier.Thread()
	state := &storage.TriggerState{
		ID:         uuid.NewString(),
		BundleDir:  dir,
		Title:      title,
		ThreadChan: thread.Channel,
		ThreadTS:   thread.TS,
		CreatedAt:  now,
		Deadline:   now.Add(c.cfg.PollTimeout()),
		Status:     storage.TriggerPending,
	}
	if err := c.triggers.Save(state); err != nil {
		// The bundle exists and the transcript is marked processed, so this
		// is not a plain failure: the operator has to publish by hand.
		notifier.TriggerFailed(ctx, dir, err)
		return nil, err
	}

	notifier.Completed(ctx, dir, c.cfg.Poller.Emoji, c.cfg.PollTimeout())
	log.Info("transcript processed", "trigger_id", state.ID,
		"deadline", state.Deadline.Format(time.RFC3339))
	return state, nil
}

func (c *Coordinator) step(ctx context.Context, notifier *chat.Notifier, step llm.StepKind, gc llm.GenContext) (string, *parse.Result, error) {
	raw, err := c.gen.Generate(ctx, step, gc)
	if err != nil {
		return "", nil, err
	}

	result := parse.Parse(step, raw)
	if !result.Clean() {
		warnings := result.Warnings()
		c.log.Warn("step output incomplete", "step", string(step), "warnings", warnings)
		notifier.ParseWarnings(ctx, string(step), warnings)
	}
	return raw, result, nil
}

// styleExamples loads the optional newsletter style file. Absence is normal.
func (c *Coordinator) styleExamples() string {
	if c.cfg.Templates.NewsletterExamples == "" {
		return ""
	}
	data, err := os.ReadFile(c.cfg.Templates.NewsletterExamples)
	if err != nil {
		return ""
	}
	return string(data)
}
