package markdown

import (
	"strings"
	"testing"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNew_UnknownTheme(t *testing.T) {
	if _, err := New("no-such-theme"); err == nil {
		t.Error("expected error for unknown theme")
	}
	if !ThemeExists(DefaultTheme) {
		t.Errorf("default theme %q should be registered", DefaultTheme)
	}
}

func TestRender_Basics(t *testing.T) {
	r := testRenderer(t)
	html, err := r.Render("# Title\n\nSome ~~old~~ text.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"<h1", "Title</h1>", "<del>old</del>", "<table>"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
}

func TestRender_HighlightsCode(t *testing.T) {
	r := testRenderer(t)
	html, err := r.Render("```go\nfunc main() {}\n```\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "<pre") || !strings.Contains(html, "style=") {
		t.Errorf("expected inline-styled highlighted code, got:\n%s", html)
	}
}

func TestRender_ImageCaption(t *testing.T) {
	r := testRenderer(t)
	html, err := r.Render(`![a star](/static/star.gif "My star")`)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, `<img src="/static/star.gif" alt="a star" title="My star">`) {
		t.Errorf("unexpected img markup:\n%s", html)
	}
	if !strings.Contains(html, `<p class="markdown-image-title">My star</p>`) {
		t.Errorf("missing caption:\n%s", html)
	}

	html, err = r.Render(`![plain](/x.png)`)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(html, "markdown-image-title") {
		t.Errorf("untitled image should have no caption:\n%s", html)
	}
}

func TestRender_Typographer(t *testing.T) {
	r := testRenderer(t)
	html, err := r.Render(`"quoted" -- dash`)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "&ldquo;quoted&rdquo;") {
		t.Errorf("expected smart quotes:\n%s", html)
	}
}
