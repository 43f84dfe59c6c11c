package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testWordPress(t *testing.T, handler http.HandlerFunc) *WordPress {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWordPress(srv.URL, "colereed", "app-pass", "First Cup")
}

func TestWordPress_Configured(t *testing.T) {
	if NewWordPress("", "", "", "cat").Configured() {
		t.Error("Configured() = true with no credentials")
	}
	if !NewWordPress("https://blog.example", "u", "p", "cat").Configured() {
		t.Error("Configured() = false with full credentials")
	}
}

func TestWordPress_CategoryLookup(t *testing.T) {
	wp := testWordPress(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/categories" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if user, pass, _ := r.BasicAuth(); user != "colereed" || pass != "app-pass" {
			t.Errorf("basic auth = %s:%s", user, pass)
		}
		fmt.Fprint(w, `[{"id":7,"name":"first cup"},{"id":9,"name":"Other"}]`)
	})

	id, err := wp.CategoryID(context.Background())
	if err != nil {
		t.Fatalf("CategoryID() error = %v", err)
	}
	// Name match is case-insensitive.
	if id != 7 {
		t.Errorf("CategoryID() = %d, want 7", id)
	}
}

func TestWordPress_CategoryCreated(t *testing.T) {
	calls := 0
	wp := testWordPress(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `[]`)
			return
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["name"] != "First Cup" || payload["slug"] != "first-cup" {
			t.Errorf("payload = %v", payload)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":42}`)
	})

	id, err := wp.CategoryID(context.Background())
	if err != nil {
		t.Fatalf("CategoryID() error = %v", err)
	}
	if id != 42 {
		t.Errorf("CategoryID() = %d, want 42", id)
	}

	// The resolved ID is cached.
	if _, err := wp.CategoryID(context.Background()); err != nil {
		t.Fatalf("cached CategoryID() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("api calls = %d, want 2 (lookup + create)", calls)
	}
}

func TestWordPress_CreateDraft(t *testing.T) {
	var payload map[string]any
	wp := testWordPress(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/posts" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":101,"link":"https://blog.example/?p=101"}`)
	})

	post, err := wp.CreateDraft(context.Background(), "The Big Rewrite", "<p>body</p>", 7, 55)
	if err != nil {
		t.Fatalf("CreateDraft() error = %v", err)
	}

	if payload["status"] != "draft" {
		t.Errorf("status = %v, posts must never go live directly", payload["status"])
	}
	if payload["featured_media"] != float64(55) {
		t.Errorf("featured_media = %v", payload["featured_media"])
	}

	if post.ID != 101 {
		t.Errorf("post id = %d", post.ID)
	}
	if want := wp.siteURL + "/wp-admin/post.php?post=101&action=edit"; post.EditURL != want {
		t.Errorf("edit url = %q, want %q", post.EditURL, want)
	}
}

func TestWordPress_CreateDraftOmitsZeroIDs(t *testing.T) {
	var payload map[string]any
	wp := testWordPress(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		fmt.Fprint(w, `{"id":1,"link":"https://blog.example/?p=1"}`)
	})

	if _, err := wp.CreateDraft(context.Background(), "t", "<p>b</p>", 0, 0); err != nil {
		t.Fatalf("CreateDraft() error = %v", err)
	}
	if _, ok := payload["categories"]; ok {
		t.Error("categories sent despite zero ID")
	}
	if _, ok := payload["featured_media"]; ok {
		t.Error("featured_media sent despite zero ID")
	}
}

func TestWordPress_ErrorStatus(t *testing.T) {
	wp := testWordPress(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":"invalid_credentials"}`)
	})

	_, err := wp.CreateDraft(context.Background(), "t", "b", 0, 0)
	if err == nil {
		t.Fatal("CreateDraft() error = nil on 401")
	}
	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("error = %v, want PublishError", err)
	}
}
