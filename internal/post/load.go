package post

import (
	"context"
	"html/template"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcpar-land/quill/internal/checksum"
	"github.com/mcpar-land/quill/internal/index"
	"github.com/mcpar-land/quill/internal/storage"
)

// Renderer converts a Markdown body to HTML.
type Renderer interface {
	Render(src string) (string, error)
	Theme() string
}

// Loader reads every post from a store, rendering through an optional cache.
type Loader struct {
	store    storage.Provider
	renderer Renderer
	cache    index.PostIndex
	logger   *slog.Logger
}

// NewLoader creates a Loader. cache may be nil.
func NewLoader(store storage.Provider, renderer Renderer, cache index.PostIndex, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, renderer: renderer, cache: cache, logger: logger}
}

// LoadAll loads the top-level files of the store in parallel and returns them
// newest first. The first failing post aborts the load.
func (l *Loader) LoadAll(ctx context.Context) ([]*Post, error) {
	files, err := l.store.Files("")
	if err != nil {
		return nil, err
	}
	files = slices.DeleteFunc(files, func(f string) bool {
		return strings.Contains(f, "/") || strings.HasPrefix(f, ".")
	})

	posts := make([]*Post, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p, err := l.load(f)
			if err != nil {
				return err
			}
			posts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if l.cache != nil {
		live := make(map[string]struct{}, len(files))
		for _, f := range files {
			live[f] = struct{}{}
		}
		if _, err := index.Prune(l.cache, live, l.logger); err != nil {
			l.logger.Warn("post: prune cache failed", slog.String("error", err.Error()))
		}
	}

	slices.SortFunc(posts, func(a, b *Post) int { return Compare(b, a) })
	return posts, nil
}

func (l *Loader) load(path string) (*Post, error) {
	data, err := l.store.Read(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	p, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	p.Checksum = checksum.Key(checksum.Sum(data), l.renderer.Theme())

	if l.cache != nil {
		html, ok, err := l.cache.CachedHTML(path, p.Checksum)
		if err != nil {
			l.logger.Warn("post: cache lookup failed", slog.String("path", path), slog.String("error", err.Error()))
		} else if ok {
			p.Content = template.HTML(html)
			l.logger.Debug("post: cache hit", slog.String("path", path))
			return p, nil
		}
	}

	html, err := l.renderer.Render(p.Source)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	p.Content = template.HTML(html)

	if l.cache != nil {
		row := p.Row()
		row.UpdatedAt = time.Now().UTC()
		if err := l.cache.UpsertPost(row, p.Source, html); err != nil {
			l.logger.Warn("post: cache store failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	l.logger.Debug("post: rendered", slog.String("path", path))
	return p, nil
}
