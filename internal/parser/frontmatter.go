// Package parser holds the grammars for post metadata: the frontmatter block
// at the top of every post and the date literal in every post's file name.
package parser

import (
	"strings"

	"github.com/mcpar-land/quill/pkg/combinators"
)

const divider = "---"

// Frontmatter is the metadata block that prefixes a post.
type Frontmatter struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

var (
	openDivider  = combinators.Tag(divider)
	closeDivider = combinators.Until(divider)

	// A line runs to the next newline or to the end of the input.
	line = combinators.Alt(combinators.Until("\n"), combinators.Rest)

	keyValue = combinators.Pair(combinators.Until(":"), combinators.Rest)

	tagList = combinators.Map(
		combinators.Pair(combinators.Tag("["), combinators.Rest),
		func(t combinators.Tuple[string, string]) string { return t.Second },
	)
	tagSeparator = combinators.Until(",")
)

// ParseFrontmatter splits a post into its frontmatter and body. The post must
// begin with a --- line followed by title, description and tags lines in that
// order and a closing ---. Everything after the closing marker, less leading
// line breaks, is the body. Lines after tags are ignored.
func ParseFrontmatter(post string) (string, Frontmatter, error) {
	_, rest, err := openDivider(post)
	if err != nil {
		return "", Frontmatter{}, ErrMissingDivider
	}
	block, body, err := closeDivider(rest)
	if err != nil {
		return "", Frontmatter{}, ErrMissingSecondDivider
	}

	lines := strings.TrimSpace(block)

	titleLine, lines, err := nextLine(lines, ErrMissingTitle)
	if err != nil {
		return "", Frontmatter{}, err
	}
	title, err := lineValue(titleLine, "title")
	if err != nil {
		return "", Frontmatter{}, err
	}

	descriptionLine, lines, err := nextLine(lines, ErrMissingDescription)
	if err != nil {
		return "", Frontmatter{}, err
	}
	description, err := lineValue(descriptionLine, "description")
	if err != nil {
		return "", Frontmatter{}, err
	}

	tagsLine, _, err := nextLine(lines, ErrMissingTags)
	if err != nil {
		return "", Frontmatter{}, err
	}
	tagsValue, err := lineValue(tagsLine, "tags")
	if err != nil {
		return "", Frontmatter{}, err
	}
	tags, err := parseTags(tagsValue)
	if err != nil {
		return "", Frontmatter{}, err
	}

	body = strings.TrimLeft(body, "\r\n")
	return body, Frontmatter{Title: title, Description: description, Tags: tags}, nil
}

func nextLine(input string, missing error) (string, string, error) {
	if input == "" {
		return "", "", missing
	}
	l, rest, err := line(input)
	if err != nil {
		return "", "", missing
	}
	return strings.TrimSuffix(l, "\r"), rest, nil
}

func lineValue(l, expected string) (string, error) {
	kv, _, err := keyValue(l)
	if err != nil {
		return "", ErrInvalidLineFormat
	}
	if key := strings.TrimSpace(kv.First); key != expected {
		return "", &LinePositionError{Expected: expected, Got: key}
	}
	return strings.TrimSpace(kv.Second), nil
}

// parseTags reads "[a, b, c]". "[]" is the empty list.
func parseTags(value string) ([]string, error) {
	inner, _, err := tagList(value)
	if err != nil || !strings.HasSuffix(inner, "]") {
		return nil, ErrBadTagsFormat
	}
	inner = strings.TrimSuffix(inner, "]")
	if strings.TrimSpace(inner) == "" {
		return []string{}, nil
	}

	var tags []string
	rest := inner
	for {
		tag, next, err := tagSeparator(rest)
		if err != nil {
			return append(tags, strings.TrimSpace(rest)), nil
		}
		tags = append(tags, strings.TrimSpace(tag))
		rest = next
	}
}
