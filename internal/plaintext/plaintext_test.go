package plaintext

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mcpar-land/quill/internal/parser"
	"github.com/mcpar-land/quill/internal/post"
)

func TestCenter(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ab", 6, "  ab  "},
		{"ab", 5, " ab  "},
		{"abcdef", 3, "abcdef"},
		{"a\nabc", 0, " a \nabc"},
	}
	for _, tt := range tests {
		if got := center(tt.in, tt.width); got != tt.want {
			t.Errorf("center(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestBox(t *testing.T) {
	got := box("hi\nthere")
	want := "┏━━━━━━━┓\n" +
		"┃ hi    ┃\n" +
		"┃ there ┃\n" +
		"┗━━━━━━━┛"
	if got != want {
		t.Errorf("box =\n%s\nwant\n%s", got, want)
	}
}

func TestHeader(t *testing.T) {
	p := &post.Post{Frontmatter: parser.Frontmatter{Title: "Hello", Description: "A longer line"}}
	lines := strings.Split(Header(p), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(lines))
	}
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n != Width {
			t.Errorf("line %q has width %d, want %d", l, n, Width)
		}
	}
	if !strings.Contains(lines[1], "┃     Hello     ┃") {
		t.Errorf("title not centered inside box: %q", lines[1])
	}
	if !strings.Contains(lines[2], "┃ A longer line ┃") {
		t.Errorf("description line: %q", lines[2])
	}
}

func TestWrite(t *testing.T) {
	posts := []*post.Post{
		{Frontmatter: parser.Frontmatter{Title: "One", Description: "first"}},
		{Frontmatter: parser.Frontmatter{Title: "Two", Description: "second"}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, posts); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "┏") != 2 {
		t.Errorf("expected two boxes:\n%s", out)
	}
	if strings.Index(out, "One") > strings.Index(out, "Two") {
		t.Error("posts should keep their order")
	}
}
