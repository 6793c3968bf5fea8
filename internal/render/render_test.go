package render

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/live"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func sample() []domain.Bookmark {
	return []domain.Bookmark{
		{ID: "b2", URL: "https://go.dev", Title: "Go", CreatedAt: time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)},
		{ID: "b1", URL: "https://example.com", Title: "<script>x</script>", CreatedAt: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)},
	}
}

func TestRenderListEmpty(t *testing.T) {
	html, err := newRenderer(t).RenderList(nil, nil)
	if err != nil {
		t.Fatalf("RenderList() error = %v", err)
	}
	if !strings.Contains(html, "No bookmarks yet") {
		t.Errorf("empty state missing: %s", html)
	}
	if strings.Contains(html, "<li") {
		t.Errorf("unexpected rows: %s", html)
	}
}

func TestRenderListRows(t *testing.T) {
	html, err := newRenderer(t).RenderList(sample(), map[string]bool{"b1": true})
	if err != nil {
		t.Fatalf("RenderList() error = %v", err)
	}

	if n := strings.Count(html, "<li"); n != 2 {
		t.Errorf("rows = %v, want 2", n)
	}
	if strings.Index(html, `data-id="b2"`) > strings.Index(html, `data-id="b1"`) {
		t.Error("rows not in list order")
	}
	if strings.Contains(html, "<script>x</script>") {
		t.Error("title not escaped")
	}
	if !strings.Contains(html, `action="/bookmarks/b1/delete"`) {
		t.Error("delete form missing")
	}
	if n := strings.Count(html, " disabled"); n != 1 {
		t.Errorf("disabled buttons = %v, want 1", n)
	}
	if !strings.Contains(html, "Feb 03, 2026") {
		t.Error("created date missing")
	}
}

func TestDashboardPage(t *testing.T) {
	tests := []struct {
		name     string
		identity domain.Identity
		form     live.FormState
		want     []string
		notWant  []string
	}{
		{
			name:     "avatar and count",
			identity: domain.Identity{ID: "u1", Email: "alice@example.com", Name: "Alice", AvatarURL: "https://example.com/a.png"},
			want:     []string{`src="https://example.com/a.png"`, "Alice", "alice@example.com", "(2)", "/static/live.js", `action="/auth/signout"`},
		},
		{
			name:     "initial without avatar",
			identity: domain.Identity{ID: "u1", Email: "bob@example.com"},
			want:     []string{`avatar-initial">B<`},
			notWant:  []string{"<img"},
		},
		{
			name:     "form error and pending",
			identity: domain.Identity{ID: "u1", Email: "bob@example.com"},
			form:     live.FormState{URL: "https://example.com", Error: live.ErrMsgRequired, Pending: true},
			want:     []string{"Both URL and title are required.", `value="https://example.com"`, "Adding..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			err := newRenderer(t).Page(rec, http.StatusOK, PageDashboard, DashboardData{
				Identity: tt.identity,
				List:     ListData{Items: sample()},
				Form:     tt.form,
			})
			if err != nil {
				t.Fatalf("Page() error = %v", err)
			}

			body := rec.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body contains %q", s)
				}
			}
		})
	}
}

func TestPageStatusAndType(t *testing.T) {
	rec := httptest.NewRecorder()
	err := newRenderer(t).Page(rec, http.StatusBadRequest, PageAuthError, ErrorData{Title: "Authentication Error", Message: "try again"})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %v", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<title>Authentication Error - Smart Bookmark</title>") {
		t.Errorf("title block not applied: %s", rec.Body.String())
	}
}

func TestPageUnknown(t *testing.T) {
	if err := newRenderer(t).Page(httptest.NewRecorder(), http.StatusOK, "nope.html", nil); err == nil {
		t.Error("Page() error = nil for an unknown page")
	}
}

func TestHomeKeepsDefaultTitle(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := newRenderer(t).Page(rec, http.StatusOK, PageHome, HomeData{}); err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if !strings.Contains(rec.Body.String(), "<title>Smart Bookmark</title>") {
		t.Error("default title missing")
	}
}

func TestStatic(t *testing.T) {
	srv := httptest.NewServer(Static())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/live.js")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "WebSocket") {
		t.Errorf("status = %v", resp.StatusCode)
	}
}

func TestLiveClientOpensOneConnection(t *testing.T) {
	srv := httptest.NewServer(Static())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/live.js")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	js := string(body)

	if n := strings.Count(js, "new WebSocket("); n != 1 {
		t.Errorf("WebSocket constructed %d times, want 1", n)
	}
	// a dropped connection is not reopened
	if strings.Contains(js, "setTimeout(open") || strings.Contains(js, "setInterval(open") {
		t.Error("live.js schedules a reconnect")
	}
}
