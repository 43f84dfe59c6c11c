package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBase = "https://slack.com/api"

// Slack implements Channel over the Slack Web API using a bot token.
type Slack struct {
	token   string
	channel string
	apiBase string
	client  *http.Client
}

// NewSlack creates a Slack channel bound to one conversation.
func NewSlack(token, channelID, apiBase string) *Slack {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Slack{
		token:   token,
		channel: channelID,
		apiBase: strings.TrimRight(apiBase, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type postResponse struct {
	OK      bool   `json:"ok"`
	TS      string `json:"ts"`
	Channel string `json:"channel"`
	Error   string `json:"error"`
}

// Post sends text to the bound conversation, threading under thread when set.
func (s *Slack) Post(ctx context.Context, text string, thread ThreadRef) (ThreadRef, error) {
	payload := map[string]string{
		"channel": s.channel,
		"text":    text,
	}
	if !thread.IsZero() {
		payload["thread_ts"] = thread.TS
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ThreadRef{}, &ChannelError{Op: "post", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return ThreadRef{}, &ChannelError{Op: "post", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	var resp postResponse
	if err := s.do(req, &resp); err != nil {
		return ThreadRef{}, &ChannelError{Op: "post", Err: err}
	}
	if !resp.OK {
		return ThreadRef{}, &ChannelError{Op: "post", Err: fmt.Errorf("api error: %s", resp.Error)}
	}

	if thread.IsZero() {
		return ThreadRef{Channel: resp.Channel, TS: resp.TS}, nil
	}
	return thread, nil
}

type repliesResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages []struct {
		User  string `json:"user"`
		BotID string `json:"bot_id"`
		Text  string `json:"text"`
		TS    string `json:"ts"`
	} `json:"messages"`
}

// PollReply returns the oldest human reply in the thread newer than since.
func (s *Slack) PollReply(ctx context.Context, thread ThreadRef, since time.Time) (*Reply, error) {
	params := url.Values{
		"channel": {thread.Channel},
		"ts":      {thread.TS},
		"limit":   {"20"},
	}

	req, err := s.get(ctx, "/conversations.replies", params)
	if err != nil {
		return nil, &ChannelError{Op: "poll reply", Err: err}
	}

	var resp repliesResponse
	if err := s.do(req, &resp); err != nil {
		return nil, &ChannelError{Op: "poll reply", Err: err}
	}
	if !resp.OK {
		return nil, &ChannelError{Op: "poll reply", Err: fmt.Errorf("api error: %s", resp.Error)}
	}

	// The first message is the thread root we posted ourselves.
	for i, msg := range resp.Messages {
		if i == 0 || msg.BotID != "" || msg.User == "" {
			continue
		}
		if !tsAfter(msg.TS, since) {
			continue
		}
		return &Reply{Text: strings.TrimSpace(msg.Text), User: msg.User, TS: msg.TS}, nil
	}
	return nil, nil
}

type reactionsResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message struct {
		Reactions []struct {
			Name string `json:"name"`
		} `json:"reactions"`
	} `json:"message"`
}

// PollReaction reports whether the named reaction exists on the thread root.
func (s *Slack) PollReaction(ctx context.Context, thread ThreadRef, emoji string) (bool, error) {
	params := url.Values{
		"channel":   {thread.Channel},
		"timestamp": {thread.TS},
	}

	req, err := s.get(ctx, "/reactions.get", params)
	if err != nil {
		return false, &ChannelError{Op: "poll reaction", Err: err}
	}

	var resp reactionsResponse
	if err := s.do(req, &resp); err != nil {
		return false, &ChannelError{Op: "poll reaction", Err: err}
	}
	if !resp.OK {
		// no_reaction just means nobody has reacted yet.
		if resp.Error == "no_reaction" {
			return false, nil
		}
		return false, &ChannelError{Op: "poll reaction", Err: fmt.Errorf("api error: %s", resp.Error)}
	}

	for _, reaction := range resp.Message.Reactions {
		if reaction.Name == emoji {
			return true, nil
		}
	}
	return false, nil
}

func (s *Slack) get(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	return req, nil
}

// do executes the request and decodes the JSON body into out. Any transport
// failure, bad status, or undecodable body is returned as a plain error for
// the callers to wrap; the channel runs unattended, so none of these may be
// treated as fatal further up.
func (s *Slack) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}

// tsAfter compares a Slack message timestamp ("1234567890.123456") to a time.
func tsAfter(ts string, since time.Time) bool {
	seconds, _, _ := strings.Cut(ts, ".")
	unix, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return false
	}
	return unix > since.Unix()
}
