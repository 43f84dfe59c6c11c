// Package cli provides the command-line interface for showrunner.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/colereed/showrunner/internal/chat"
	"github.com/colereed/showrunner/internal/config"
	"github.com/colereed/showrunner/internal/llm"
	"github.com/colereed/showrunner/internal/poller"
	"github.com/colereed/showrunner/internal/publish"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath string

	// Global config and logger, set by the root PersistentPreRunE.
	cfg      config.Config
	logger   *slog.Logger
	logClose func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "showrunner",
	Short: "Podcast episode content pipeline",
	Long: `Showrunner turns dropped episode transcripts into publish-ready content:
title options with human selection, a YouTube description, a newsletter
teaser and a short article, bundled per episode. A publish trigger then
waits for an operator signal before creating the CMS draft post.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logger, logClose = config.SetupLogger(cfg.Log.File, cfg.Log.Level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logClose != nil {
			if err := logClose(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// newChannel returns the configured chat channel, or nil when chat is off.
func newChannel() chat.Channel {
	if !cfg.ChatConfigured() {
		return nil
	}
	return chat.NewSlack(cfg.Chat.BotToken, cfg.Chat.ChannelID, cfg.Chat.APIBase)
}

// newGenerator builds the configured LLM client.
func newGenerator(ctx context.Context) (llm.Generator, error) {
	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	return model, nil
}

func newWordPress() *publish.WordPress {
	return publish.NewWordPress(cfg.CMS.SiteURL, cfg.CMS.Username, cfg.CMS.AppPassword, cfg.CMS.Category)
}

// newPublishService builds the CMS publish service, failing early when
// credentials are missing.
func newPublishService() (*publish.Service, error) {
	wp := newWordPress()
	if !wp.Configured() {
		return nil, fmt.Errorf("CMS not configured: set WP_SITE_URL, WP_USERNAME and WP_APP_PASSWORD")
	}

	var videos publish.VideoFinder
	if cfg.Video.FeedURL != "" {
		videos = publish.NewFeedFinder(cfg.Video.FeedURL)
	}
	return publish.NewService(wp, videos, logger), nil
}

// servicePublisher adapts the publish service to the poller's interface.
type servicePublisher struct {
	svc *publish.Service
}

func (p servicePublisher) Publish(ctx context.Context, bundleDir string) (string, string, string, error) {
	post, err := p.svc.Run(ctx, bundleDir)
	if err != nil {
		return "", "", "", err
	}
	return post.Title, post.EditURL, post.VideoURL, nil
}

var _ poller.Publisher = servicePublisher{}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "showrunner.yaml", "config file path")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(pollerCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(serveCmd)
}
