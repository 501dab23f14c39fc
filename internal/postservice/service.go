// Package postservice answers read queries about the published posts.
package postservice

import (
	"context"
	"errors"
	"os"

	"github.com/mcpar-land/quill/internal/apperr"
	"github.com/mcpar-land/quill/internal/index"
	"github.com/mcpar-land/quill/internal/parser"
	"github.com/mcpar-land/quill/internal/storage"
)

// PostListItem is a lightweight item in a list response.
type PostListItem struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	PrettyDate  string   `json:"pretty_date"`
	Href        string   `json:"href"`
}

// PostDetail is the full representation of a post.
type PostDetail struct {
	PostListItem
	Source   string `json:"source"`
	HTML     string `json:"html"`
	Checksum string `json:"checksum"`
}

// Service reads post metadata from the index and sources from storage.
type Service struct {
	store storage.Provider
	db    index.PostIndex
}

// NewService creates a new post service.
func NewService(store storage.Provider, db index.PostIndex) *Service {
	return &Service{store: store, db: db}
}

// GetPost returns the post with the given name, its Markdown source and rendered HTML.
func (s *Service) GetPost(_ context.Context, name string) (*PostDetail, error) {
	row, err := s.db.GetPost(name)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(row.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	body, _, err := parser.ParseFrontmatter(string(data))
	if err != nil {
		return nil, err
	}
	html, _, err := s.db.CachedHTML(row.Path, row.Checksum)
	if err != nil {
		return nil, err
	}
	return &PostDetail{
		PostListItem: listItem(*row),
		Source:       body,
		HTML:         html,
		Checksum:     row.Checksum,
	}, nil
}

// ListPosts returns posts newest first with an optional tag filter.
func (s *Service) ListPosts(_ context.Context, limit, offset int, tag string) ([]PostListItem, int, error) {
	rows, total, err := s.db.ListPosts(limit, offset, tag)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PostListItem, len(rows))
	for i, r := range rows {
		items[i] = listItem(r)
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// Tags returns every tag with its post count.
func (s *Service) Tags(_ context.Context) ([]index.TagCount, error) {
	tags, err := s.db.Tags()
	if err != nil {
		return nil, err
	}
	return nonNilSlice(tags), nil
}

// PostsByTag returns the names of the posts carrying tag, newest first.
func (s *Service) PostsByTag(_ context.Context, tag string) ([]string, error) {
	names, err := s.db.PostsByTag(tag)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(names), nil
}

func listItem(r index.PostRow) PostListItem {
	d := parser.NewDate(uint16(r.Year), uint16(r.Month), uint16(r.Day))
	return PostListItem{
		Name:        r.Name,
		Title:       r.Title,
		Description: r.Description,
		Tags:        nonNilSlice(r.Tags),
		Date:        d.ISO8601(),
		PrettyDate:  d.Pretty(),
		Href:        "/posts/" + r.Name + ".html",
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
