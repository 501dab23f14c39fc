// Package plaintext prints posts as boxed, centered text headers.
package plaintext

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mcpar-land/quill/internal/post"
)

// Width is the column count headers are centered in.
const Width = 80

// Heavy box-drawing characters.
const (
	downRight  = "┏"
	downLeft   = "┓"
	upRight    = "┗"
	upLeft     = "┛"
	horizontal = "━"
	vertical   = "┃"
)

// Write prints every post header to w, each preceded by blank lines.
func Write(w io.Writer, posts []*post.Post) error {
	for _, p := range posts {
		if _, err := fmt.Fprintf(w, "\n\n\n%s\n", Header(p)); err != nil {
			return fmt.Errorf("plaintext: write: %w", err)
		}
	}
	return nil
}

// Header renders the title and description of p inside a box centered in Width columns.
func Header(p *post.Post) string {
	inner := center(p.Title+"\n"+p.Description, 0)
	return center(box(inner), Width)
}

// center pads every line to width, splitting the slack with the extra space
// on the right. A width of 0 means the widest line.
func center(text string, width int) string {
	lines := strings.Split(text, "\n")
	if width == 0 {
		for _, l := range lines {
			width = max(width, utf8.RuneCountInString(l))
		}
	}
	for i, l := range lines {
		slack := width - utf8.RuneCountInString(l)
		if slack <= 0 {
			continue
		}
		left := slack / 2
		lines[i] = strings.Repeat(" ", left) + l + strings.Repeat(" ", slack-left)
	}
	return strings.Join(lines, "\n")
}

func box(content string) string {
	lines := strings.Split(content, "\n")
	width := 0
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l))
	}

	var sb strings.Builder
	rule := strings.Repeat(horizontal, width+2)
	sb.WriteString(downRight + rule + downLeft + "\n")
	for _, l := range lines {
		sb.WriteString(vertical + " " + l)
		sb.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(l)))
		sb.WriteString(" " + vertical + "\n")
	}
	sb.WriteString(upRight + rule + upLeft)
	return sb.String()
}
