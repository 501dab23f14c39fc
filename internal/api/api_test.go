package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mcpar-land/quill/internal/markdown"
	"github.com/mcpar-land/quill/internal/post"
	"github.com/mcpar-land/quill/internal/postservice"
	"github.com/mcpar-land/quill/internal/testutil"
)

// testEnv sets up a posts dir, SQLite index, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()

	_, store := testutil.TestStore(t)
	db := testutil.TestDB(t)
	testutil.WriteFile(t, store, "2023-04-15_hello.md", "---\ntitle: Hello\ndescription: World\ntags: [go]\n---\nuniqueword here\n")
	testutil.WriteFile(t, store, "2023-05-01_second.md", "---\ntitle: Second\ndescription: Another\ntags: [go, misc]\n---\nbody\n")

	md, err := markdown.New("")
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := post.NewLoader(store, md, db, logger).LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	svc := postservice.NewService(store, db)
	return NewRouter(svc, authToken != "", authToken)
}

func get(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListPosts(t *testing.T) {
	router := testEnv(t, "")

	w := get(router, "/posts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp PostListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Posts) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Posts[0].Name != "2023-05-01_second" {
		t.Errorf("newest first expected, got %q", resp.Posts[0].Name)
	}

	w = get(router, "/posts?tag=misc&limit=5", "")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Posts[0].Title != "Second" {
		t.Errorf("tag filter resp = %+v", resp)
	}
}

func TestGetPost(t *testing.T) {
	router := testEnv(t, "")

	w := get(router, "/posts/2023-04-15_hello", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var p PostDetail
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Title != "Hello" || p.Date != "2023-4-15" || p.Source != "uniqueword here\n" {
		t.Errorf("post = %+v", p)
	}
	if !strings.Contains(p.HTML, "<p>uniqueword here</p>") {
		t.Errorf("html = %q", p.HTML)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	router := testEnv(t, "")
	if w := get(router, "/posts/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(router, "/search?q=uniqueword", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Name != "2023-04-15_hello" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")
	if w := get(router, "/search", ""); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestTagsEndpoints(t *testing.T) {
	router := testEnv(t, "")

	var tags TagsResponse
	_ = json.Unmarshal(get(router, "/tags", "").Body.Bytes(), &tags)
	var got []string
	for _, tc := range tags.Tags {
		got = append(got, tc.Tag)
	}
	if diff := cmp.Diff([]string{"go", "misc"}, got); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	var byTag TagPostsResponse
	_ = json.Unmarshal(get(router, "/tags/go", "").Body.Bytes(), &byTag)
	want := TagPostsResponse{Tag: "go", Posts: []string{"2023-05-01_second", "2023-04-15_hello"}}
	if diff := cmp.Diff(want, byTag); diff != "" {
		t.Errorf("posts by tag mismatch (-want +got):\n%s", diff)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")
	if w := get(router, "/posts", "secret123"); w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")
	w := get(router, "/posts", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("401 should carry a WWW-Authenticate challenge")
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")
	if w := get(router, "/posts", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")
	if w := get(router, "/posts", ""); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestSiteHandler(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(dir, rel)
		_ = os.MkdirAll(filepath.Dir(full), 0o755)
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("index.html", "home")
	write("404.html", "lost")
	write("posts/2023-01-01_a.html", "post a")

	h := SiteHandler(dir)
	tests := []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, "home"},
		{"/posts/2023-01-01_a.html", http.StatusOK, "post a"},
		{"/posts/missing.html", http.StatusNotFound, "lost"},
		{"/posts/", http.StatusNotFound, "lost"},
		{"/../etc/passwd", http.StatusNotFound, "lost"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.code || w.Body.String() != tt.body {
			t.Errorf("%s: got %d %q, want %d %q", tt.path, w.Code, w.Body.String(), tt.code, tt.body)
		}
	}
}

func TestReadiness(t *testing.T) {
	ready := false
	h := Readiness(func() bool { return ready })

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("before build = %d, want 503", w.Code)
	}

	ready = true
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("after build = %d %s", w.Code, w.Body.String())
	}
}
