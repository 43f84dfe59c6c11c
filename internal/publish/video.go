package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// ErrNoVideo is returned when the channel feed holds no usable entry.
var ErrNoVideo = errors.New("no video found in channel feed")

// Video is an episode recording resolved from the channel feed.
type Video struct {
	ID           string
	Title        string
	ShareURL     string
	ThumbnailURL string
}

// VideoFinder resolves the recording that belongs to an episode.
type VideoFinder interface {
	MostRecent(ctx context.Context, titleHint string) (*Video, error)
}

// FeedFinder looks up videos from a YouTube channel RSS feed.
type FeedFinder struct {
	feedURL string
	parser  *gofeed.Parser
}

func NewFeedFinder(feedURL string) *FeedFinder {
	return &FeedFinder{feedURL: feedURL, parser: gofeed.NewParser()}
}

// MostRecent returns the feed entry whose title best matches titleHint,
// falling back to the newest entry when nothing matches. A non-empty hint
// matches on case-insensitive substring in either direction.
func (f *FeedFinder) MostRecent(ctx context.Context, titleHint string) (*Video, error) {
	feed, err := f.parser.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse channel feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, ErrNoVideo
	}

	item := feed.Items[0]
	if hint := strings.ToLower(strings.TrimSpace(titleHint)); hint != "" {
		for _, it := range feed.Items {
			title := strings.ToLower(it.Title)
			if strings.Contains(title, hint) || strings.Contains(hint, title) {
				item = it
				break
			}
		}
	}

	video := &Video{Title: item.Title, ShareURL: item.Link}
	if exts, ok := item.Extensions["yt"]; ok {
		if ids, ok := exts["videoId"]; ok && len(ids) > 0 {
			video.ID = ids[0].Value
		}
	}
	if video.ID == "" {
		video.ID = idFromLink(item.Link)
	}
	if video.ID != "" {
		if video.ShareURL == "" {
			video.ShareURL = "https://www.youtube.com/watch?v=" + video.ID
		}
		video.ThumbnailURL = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", video.ID)
	}
	if video.ShareURL == "" {
		return nil, ErrNoVideo
	}
	return video, nil
}

func idFromLink(link string) string {
	if _, after, ok := strings.Cut(link, "watch?v="); ok {
		if id, _, found := strings.Cut(after, "&"); found {
			return id
		}
		return after
	}
	return ""
}
