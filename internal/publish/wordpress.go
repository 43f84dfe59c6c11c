// Package publish creates draft posts on the CMS once a publish trigger
// fires. It is the collaborator invoked by the poller, never by the
// orchestrator itself.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const userAgent = "showrunner/1.0"

// PublishError wraps a CMS or video-lookup failure during the triggered
// publish action. The poller reports it to the thread and leaves its state
// TRIGGERED so the operator can retry manually without re-polling.
type PublishError struct {
	Op  string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// PostInfo describes a created draft post.
type PostInfo struct {
	ID       int
	Title    string
	URL      string
	EditURL  string
	VideoURL string
}

// WordPress is a client for the WordPress REST v2 API using application
// password authentication.
type WordPress struct {
	siteURL  string
	username string
	password string
	category string
	client   *http.Client

	categoryID int
}

// NewWordPress creates a CMS client. category is looked up (or created)
// lazily on first post.
func NewWordPress(siteURL, username, password, category string) *WordPress {
	return &WordPress{
		siteURL:  strings.TrimRight(siteURL, "/"),
		username: username,
		password: password,
		category: category,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether credentials are present.
func (w *WordPress) Configured() bool {
	return w.siteURL != "" && w.username != "" && w.password != ""
}

func (w *WordPress) api(path string) string {
	return w.siteURL + "/wp-json/wp/v2" + path
}

// TestConnection verifies credentials against the users/me endpoint and
// returns the account display name.
func (w *WordPress) TestConnection(ctx context.Context) (string, error) {
	var user struct {
		Name string `json:"name"`
	}
	if err := w.doJSON(ctx, http.MethodGet, w.api("/users/me"), nil, &user); err != nil {
		return "", &PublishError{Op: "test connection", Err: err}
	}
	return user.Name, nil
}

// CategoryID finds or creates the configured category and caches its ID.
// A missing category is not fatal: the draft is created uncategorized.
func (w *WordPress) CategoryID(ctx context.Context) (int, error) {
	if w.categoryID != 0 {
		return w.categoryID, nil
	}

	var categories []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	lookup := w.api("/categories") + "?search=" + url.QueryEscape(w.category)
	if err := w.doJSON(ctx, http.MethodGet, lookup, nil, &categories); err != nil {
		return 0, &PublishError{Op: "find category", Err: err}
	}
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, w.category) {
			w.categoryID = cat.ID
			return cat.ID, nil
		}
	}

	var created struct {
		ID int `json:"id"`
	}
	payload := map[string]string{
		"name": w.category,
		"slug": slugify(w.category),
	}
	if err := w.doJSON(ctx, http.MethodPost, w.api("/categories"), payload, &created); err != nil {
		return 0, &PublishError{Op: "create category", Err: err}
	}
	w.categoryID = created.ID
	return created.ID, nil
}

// UploadImage downloads the image at imageURL and uploads it to the media
// library, returning the media ID for use as a featured image.
func (w *WordPress) UploadImage(ctx context.Context, imageURL, title string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, &PublishError{Op: "download image", Err: err}
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return 0, &PublishError{Op: "download image", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &PublishError{Op: "download image", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	img, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return 0, &PublishError{Op: "download image", Err: err}
	}

	filename := fmt.Sprintf("episode-%s.jpg", slugify(title))
	upload, err := http.NewRequestWithContext(ctx, http.MethodPost, w.api("/media"), bytes.NewReader(img))
	if err != nil {
		return 0, &PublishError{Op: "upload image", Err: err}
	}
	upload.SetBasicAuth(w.username, w.password)
	upload.Header.Set("User-Agent", userAgent)
	upload.Header.Set("Content-Type", "image/jpeg")
	upload.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	uploadResp, err := w.client.Do(upload)
	if err != nil {
		return 0, &PublishError{Op: "upload image", Err: err}
	}
	defer uploadResp.Body.Close()
	if uploadResp.StatusCode != http.StatusOK && uploadResp.StatusCode != http.StatusCreated {
		return 0, &PublishError{Op: "upload image", Err: fmt.Errorf("status %d", uploadResp.StatusCode)}
	}

	var media struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(uploadResp.Body).Decode(&media); err != nil {
		return 0, &PublishError{Op: "upload image", Err: err}
	}
	return media.ID, nil
}

// CreateDraft creates a draft post with the given HTML content. categoryID
// and mediaID are optional (zero skips them).
func (w *WordPress) CreateDraft(ctx context.Context, title, html string, categoryID, mediaID int) (*PostInfo, error) {
	payload := map[string]any{
		"title":   title,
		"content": html,
		"status":  "draft",
		"format":  "standard",
	}
	if categoryID != 0 {
		payload["categories"] = []int{categoryID}
	}
	if mediaID != 0 {
		payload["featured_media"] = mediaID
	}

	var post struct {
		ID   int    `json:"id"`
		Link string `json:"link"`
	}
	if err := w.doJSON(ctx, http.MethodPost, w.api("/posts"), payload, &post); err != nil {
		return nil, &PublishError{Op: "create post", Err: err}
	}

	return &PostInfo{
		ID:      post.ID,
		URL:     post.Link,
		EditURL: fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", w.siteURL, post.ID),
	}, nil
}

func (w *WordPress) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(w.username, w.password)
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
