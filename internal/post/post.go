// Package post turns the files of the posts directory into rendered posts.
package post

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/mcpar-land/quill/internal/apperr"
	"github.com/mcpar-land/quill/internal/index"
	"github.com/mcpar-land/quill/internal/parser"
)

// Post is a parsed and rendered blog post.
type Post struct {
	parser.Frontmatter

	// Filename is the source file name without the .md extension.
	Filename string
	Href     string
	Date     parser.Date
	Content  template.HTML
	// Source is the Markdown body after the frontmatter block.
	Source   string
	Checksum string
}

// LoadError reports which post file failed to load.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("post: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Parse reads the date and name from a file name of the form
// <date>_<slug>.md and the frontmatter from data. Content is left empty.
func Parse(filename string, data []byte) (*Post, error) {
	datePart, _, ok := strings.Cut(filename, "_")
	if !ok {
		return nil, &LoadError{Path: filename, Err: fmt.Errorf("%w: invalid file format %s", apperr.ErrInvalidPost, filename)}
	}
	date, err := parser.ParseDate(datePart)
	if err != nil {
		return nil, &LoadError{Path: filename, Err: err}
	}
	name, ok := strings.CutSuffix(filename, ".md")
	if !ok {
		return nil, &LoadError{Path: filename, Err: fmt.Errorf("%w: post file must end in .md", apperr.ErrInvalidPost)}
	}

	body, fm, err := parser.ParseFrontmatter(string(data))
	if err != nil {
		return nil, &LoadError{Path: filename, Err: err}
	}
	for _, tag := range fm.Tags {
		if err := CheckTag(tag); err != nil {
			return nil, &LoadError{Path: filename, Err: err}
		}
	}

	return &Post{
		Frontmatter: fm,
		Filename:    name,
		Href:        "/posts/" + name + ".html",
		Date:        date,
		Source:      body,
	}, nil
}

// CheckTag rejects tags that cannot name a tag page: empty tags, tags
// containing a path separator and tags starting with a dot.
func CheckTag(tag string) error {
	if tag == "" || strings.ContainsAny(tag, `/\`) || strings.HasPrefix(tag, ".") {
		return fmt.Errorf("%w: invalid tag %q", apperr.ErrInvalidPost, tag)
	}
	return nil
}

// Row converts p into its index representation.
func (p *Post) Row() index.PostRow {
	return index.PostRow{
		Path:        p.Filename + ".md",
		Name:        p.Filename,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Year:        int(p.Date.Year),
		Month:       int(p.Date.Month),
		Day:         int(p.Date.Day),
		Checksum:    p.Checksum,
	}
}

// Compare orders posts by date, then by file name.
func Compare(a, b *Post) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return strings.Compare(a.Filename, b.Filename)
}

// Sibling is a post together with its chronological neighbours.
type Sibling struct {
	Prev *Post
	Post *Post
	Next *Post
}

// Siblings pairs every post with the entries before and after it in posts.
func Siblings(posts []*Post) []Sibling {
	out := make([]Sibling, len(posts))
	for i, p := range posts {
		out[i].Post = p
		if i > 0 {
			out[i].Prev = posts[i-1]
		}
		if i < len(posts)-1 {
			out[i].Next = posts[i+1]
		}
	}
	return out
}
