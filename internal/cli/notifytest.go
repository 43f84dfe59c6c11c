package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/colereed/showrunner/internal/chat"
)

var notifyTestCmd = &cobra.Command{
	Use:   "notify-test",
	Short: "Post a test message to the chat channel",
	Long: `Notify-test verifies the chat credentials by posting a message and reading
it back from its own thread. It also checks the CMS connection when
credentials are present.`,
	RunE: runNotifyTest,
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ch := newChannel()
	if ch == nil {
		return fmt.Errorf("chat not configured: enable chat and set SLACK_BOT_TOKEN and SLACK_CHANNEL_ID")
	}

	thread, err := ch.Post(ctx, fmt.Sprintf("showrunner connectivity test (%s)", time.Now().Format(time.RFC3339)), chat.ThreadRef{})
	if err != nil {
		return fmt.Errorf("post failed: %w", err)
	}
	fmt.Printf("Chat OK: posted to channel %s (thread %s)\n", thread.Channel, thread.TS)

	if _, err := ch.PollReply(ctx, thread, time.Now().Add(-time.Minute)); err != nil {
		return fmt.Errorf("reading thread failed: %w", err)
	}
	fmt.Println("Chat OK: thread readable")

	wp := newWordPress()
	if !wp.Configured() {
		fmt.Println("CMS skipped: credentials not set")
		return nil
	}
	name, err := wp.TestConnection(ctx)
	if err != nil {
		return fmt.Errorf("CMS connection failed: %w", err)
	}
	fmt.Printf("CMS OK: authenticated as %s\n", name)
	return nil
}
