package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/colereed/showrunner/internal/bundle"
	"github.com/colereed/showrunner/internal/publish"
)

type stubCMS struct {
	draftErr error
	calls    int
}

func (c *stubCMS) CategoryID(context.Context) (int, error) { return 7, nil }

func (c *stubCMS) UploadImage(context.Context, string, string) (int, error) { return 0, nil }

func (c *stubCMS) CreateDraft(_ context.Context, title, _ string, _, _ int) (*publish.PostInfo, error) {
	c.calls++
	if c.draftErr != nil {
		return nil, c.draftErr
	}
	return &publish.PostInfo{ID: 101, Title: title, EditURL: "https://blog.example/edit/101"}, nil
}

func testServer(t *testing.T, cms *stubCMS, withBundle bool) *Server {
	t.Helper()
	outputs := t.TempDir()
	if withBundle {
		_, err := bundle.Write(outputs, "ep1", bundle.Artifacts{
			Title:   "The Big Rewrite",
			Article: "Body text.",
		}, time.Now())
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(outputs, publish.NewService(cms, nil, log), log)
}

func TestServer_Publish(t *testing.T) {
	cms := &stubCMS{}
	srv := testServer(t, cms, true)

	req := httptest.NewRequest(http.MethodPost, "/publish", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if cms.calls != 1 {
		t.Errorf("draft calls = %d", cms.calls)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["post_id"] != float64(101) {
		t.Errorf("body = %v", body)
	}
}

func TestServer_PublishNoBundle(t *testing.T) {
	srv := testServer(t, &stubCMS{}, false)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/publish", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_PublishCMSFailure(t *testing.T) {
	cms := &stubCMS{draftErr: &publish.PublishError{Op: "create post", Err: errors.New("500")}}
	srv := testServer(t, cms, true)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/publish", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestServer_PublishWrongMethod(t *testing.T) {
	srv := testServer(t, &stubCMS{}, true)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/publish", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestServer_Health(t *testing.T) {
	srv := testServer(t, &stubCMS{}, false)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestServer_BrokenBundle(t *testing.T) {
	// A bundle directory without its files is unprocessable, not a gateway
	// problem.
	outputs := t.TempDir()
	if err := os.Mkdir(filepath.Join(outputs, "ep1_20260115_093000"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(outputs, publish.NewService(&stubCMS{}, nil, log), log)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/publish", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
