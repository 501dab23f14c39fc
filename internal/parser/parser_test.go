package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2023-04-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Date{Year: 2023, Month: 4, Day: 15}, d); diff != "" {
		t.Errorf("date mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	cases := []string{
		"2023-13-01",
		"2023-0-01",
		"bad",
		"2023-04",
		"2023-04-15-01",
		"20x3-04-15",
		"2023-04-",
		"99999-01-01",
		"-04-15",
		"+2023-04-15",
		"2023-+4-15",
	}
	for _, in := range cases {
		_, err := ParseDate(in)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", in, err)
			continue
		}
		var de *DateError
		if !errors.As(err, &de) || de.Input != in {
			t.Errorf("ParseDate(%q) should carry the original input, got %v", in, err)
		}
	}
}

func TestParseDate_NoDayRangeCheck(t *testing.T) {
	d, err := ParseDate("2024-2-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Day != 31 {
		t.Errorf("day = %d, want 31", d.Day)
	}
}

func TestDateRendering(t *testing.T) {
	d := NewDate(2023, 4, 5)
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"month", d.MonthName(), "April"},
		{"pretty", d.Pretty(), "April 5, 2023"},
		{"pretty no day", d.PrettyNoDay(), "April 2023"},
		{"iso", d.ISO8601(), "2023-4-5"},
		{"rfc2822", d.RFC2822(), "5 Apr 2023 00:00:00 -0700"},
		{"may", NewDate(2020, 5, 1).RFC2822(), "1 May 2020 00:00:00 -0700"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if got := NewDate(2020, 13, 1).MonthName(); got != "" {
		t.Errorf("month 13 name = %q, want empty", got)
	}
}

func TestDateCompare(t *testing.T) {
	a := NewDate(2022, 12, 31)
	b := NewDate(2023, 1, 1)
	c := NewDate(2023, 1, 2)
	if !a.Before(b) || !b.Before(c) || c.Before(a) {
		t.Error("dates should order chronologically")
	}
	if b.Compare(NewDate(2023, 1, 1)) != 0 {
		t.Error("equal dates should compare 0")
	}
}

const samplePost = "---\ntitle: Hello\ndescription: World\ntags: [a, b]\n---\nBODY"

func TestParseFrontmatter(t *testing.T) {
	body, fm, err := ParseFrontmatter(samplePost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Frontmatter{Title: "Hello", Description: "World", Tags: []string{"a", "b"}}
	if diff := cmp.Diff(want, fm); diff != "" {
		t.Errorf("frontmatter mismatch (-want +got):\n%s", diff)
	}
	if body != "BODY" {
		t.Errorf("body = %q, want %q", body, "BODY")
	}
}

func TestParseFrontmatter_Tags(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"tags: []", []string{}},
		{"tags: [ ]", []string{}},
		{"tags: [solo]", []string{"solo"}},
		{"tags: [go, rust, go]", []string{"go", "rust", "go"}},
		{"tags: [ spaced ,  out ]", []string{"spaced", "out"}},
		{"tags: [a,,b]", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		post := "---\ntitle: t\ndescription: d\n" + tt.line + "\n---\n"
		_, fm, err := ParseFrontmatter(post)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.line, err)
			continue
		}
		if diff := cmp.Diff(tt.want, fm.Tags); diff != "" {
			t.Errorf("%q: tags mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestParseFrontmatter_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"no divider", "title: x\n---\n", ErrMissingDivider},
		{"no closing divider", "---\ntitle: x\n", ErrMissingSecondDivider},
		{"empty block", "------\nbody", ErrMissingTitle},
		{"only title", "---\ntitle: x\n---\n", ErrMissingDescription},
		{"no tags", "---\ntitle: x\ndescription: y\n---\n", ErrMissingTags},
		{"no colon", "---\ntitle x\ndescription: y\ntags: []\n---\n", ErrInvalidLineFormat},
		{"swapped", "---\ndescription: World\ntitle: Hello\ntags: [a]\n---\n", ErrIncorrectLinePosition},
		{"case sensitive", "---\nTitle: x\ndescription: y\ntags: []\n---\n", ErrIncorrectLinePosition},
		{"tags no brackets", "---\ntitle: x\ndescription: y\ntags: a, b\n---\n", ErrBadTagsFormat},
		{"tags unclosed", "---\ntitle: x\ndescription: y\ntags: [a, b\n---\n", ErrBadTagsFormat},
	}
	for _, tt := range tests {
		_, _, err := ParseFrontmatter(tt.in)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestParseFrontmatter_SwappedNamesMissingKey(t *testing.T) {
	_, _, err := ParseFrontmatter("---\ndescription: World\ntitle: Hello\ntags: [a]\n---\n")
	var lpe *LinePositionError
	if !errors.As(err, &lpe) {
		t.Fatalf("err = %v, want *LinePositionError", err)
	}
	if lpe.Expected != "title" {
		t.Errorf("expected key = %q, want %q", lpe.Expected, "title")
	}
}

func TestParseFrontmatter_ExtraLinesIgnored(t *testing.T) {
	post := "---\r\ntitle: A: colon\r\ndescription:  spaced  \r\ntags: [x]\r\nauthor: nobody\r\n---\r\n\r\n# Heading\n"
	body, fm, err := ParseFrontmatter(post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Frontmatter{Title: "A: colon", Description: "spaced", Tags: []string{"x"}}
	if diff := cmp.Diff(want, fm); diff != "" {
		t.Errorf("frontmatter mismatch (-want +got):\n%s", diff)
	}
	if body != "# Heading\n" {
		t.Errorf("body = %q", body)
	}
}
