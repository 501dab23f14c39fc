package internal

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	root := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Paths = PathsConfig{
		Posts:  filepath.Join(root, "posts"),
		Static: filepath.Join(root, "static"),
		Styles: filepath.Join(root, "styles.css"),
		Robots: filepath.Join(root, "robots.txt"),
		Output: filepath.Join(root, "public"),
		Cache:  filepath.Join(root, "cache", "quill.db"),
	}
	if err := os.MkdirAll(cfg.Paths.Posts, 0o755); err != nil {
		t.Fatal(err)
	}
	post := "---\ntitle: First Post\ndescription: It begins\ntags: [meta]\n---\nHello.\n"
	if err := os.WriteFile(filepath.Join(cfg.Paths.Posts, "2024-05-01_first.md"), []byte(post), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)
	if err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, name := range []string{"index.html", "blog.html", "feed.xml", "tags.html", "tag/meta.html", "404.html", "posts/2024-05-01_first.html", "site.zip"} {
		if _, err := os.Stat(filepath.Join(cfg.Paths.Output, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(cfg.Paths.Cache); err != nil {
		t.Errorf("cache not created: %v", err)
	}

	// a second build reuses the cache
	if err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
}

func TestBuild_InvalidPostFails(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.Paths.Posts, "notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard))
	if err == nil || !strings.Contains(err.Error(), "notes.md") {
		t.Errorf("err = %v, want failure naming notes.md", err)
	}
}

func TestBuild_MissingPostsDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.Posts = filepath.Join(t.TempDir(), "nope")
	if err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err == nil {
		t.Error("expected error for missing posts dir")
	}
}

func TestBuild_RequiresConfig(t *testing.T) {
	if err := Build(context.Background(), WithLogOutput(io.Discard)); err == nil {
		t.Error("expected error without config")
	}
}

func TestPlaintext(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	if err := Plaintext(context.Background(), WithConfig(cfg), WithStdout(&out), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("Plaintext: %v", err)
	}
	if !strings.Contains(out.String(), "First Post") || !strings.Contains(out.String(), "It begins") {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(cfg.Paths.Cache); !os.IsNotExist(err) {
		t.Errorf("plaintext should not open the cache, stat err = %v", err)
	}
}
