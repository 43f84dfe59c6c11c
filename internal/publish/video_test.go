package publish

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const channelFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:yt="http://www.youtube.com/xml/schemas/2015">
  <title>First Cup</title>
  <entry>
    <title>Episode 43: Something Newer</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=newer43"/>
    <yt:videoId>newer43</yt:videoId>
  </entry>
  <entry>
    <title>Episode 42: The Big Rewrite</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=abc123"/>
    <yt:videoId>abc123</yt:videoId>
  </entry>
</feed>`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, channelFeed)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedFinder_NewestWithoutHint(t *testing.T) {
	finder := NewFeedFinder(feedServer(t).URL)

	video, err := finder.MostRecent(context.Background(), "")
	if err != nil {
		t.Fatalf("MostRecent() error = %v", err)
	}
	if video.ID != "newer43" {
		t.Errorf("video id = %q, want the newest entry", video.ID)
	}
	if video.ThumbnailURL != "https://img.youtube.com/vi/newer43/maxresdefault.jpg" {
		t.Errorf("thumbnail = %q", video.ThumbnailURL)
	}
}

func TestFeedFinder_TitleHintMatches(t *testing.T) {
	finder := NewFeedFinder(feedServer(t).URL)

	video, err := finder.MostRecent(context.Background(), "The Big Rewrite")
	if err != nil {
		t.Fatalf("MostRecent() error = %v", err)
	}
	if video.ID != "abc123" {
		t.Errorf("video id = %q, want the hinted entry", video.ID)
	}
	if video.ShareURL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("share url = %q", video.ShareURL)
	}
}

func TestFeedFinder_UnmatchedHintFallsBack(t *testing.T) {
	finder := NewFeedFinder(feedServer(t).URL)

	video, err := finder.MostRecent(context.Background(), "a title that matches nothing")
	if err != nil {
		t.Fatalf("MostRecent() error = %v", err)
	}
	if video.ID != "newer43" {
		t.Errorf("video id = %q, want fallback to newest", video.ID)
	}
}

func TestFeedFinder_EmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"><title>Empty</title></feed>`)
	}))
	defer srv.Close()

	_, err := NewFeedFinder(srv.URL).MostRecent(context.Background(), "")
	if err == nil {
		t.Fatal("MostRecent() error = nil for empty feed")
	}
}

func TestIDFromLink(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123"},
		{"https://www.youtube.com/watch?v=abc123&t=10s", "abc123"},
		{"https://example.com/other", ""},
	}
	for _, tt := range tests {
		if got := idFromLink(tt.link); got != tt.want {
			t.Errorf("idFromLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}
