// Package site renders loaded posts into the static output directory.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/mcpar-land/quill/internal/parser"
	"github.com/mcpar-land/quill/internal/post"
	"github.com/mcpar-land/quill/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Link is an extra entry in the site navigation.
type Link struct {
	Name string
	URL  string
}

// Options configures a Builder.
type Options struct {
	Title       string
	Description string
	Intro       string
	BaseURL     string
	Links       []Link

	HomePosts    int
	FeedMaxItems int

	Archive     bool
	ArchiveName string

	StylesPath string
	RobotsPath string
	StaticDir  string

	// LiveReload adds a script that reloads the page on "reload" server events.
	LiveReload bool
}

// Builder writes the pages of the site into an output provider.
type Builder struct {
	opts   Options
	out    storage.Provider
	tmpl   *template.Template
	logger *slog.Logger
}

// New parses the page templates and returns a Builder writing into out.
func New(out storage.Provider, opts Options, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HomePosts <= 0 {
		opts.HomePosts = 3
	}
	if opts.FeedMaxItems <= 0 {
		opts.FeedMaxItems = 10
	}
	if opts.ArchiveName == "" {
		opts.ArchiveName = "site.zip"
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")

	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"neighbour": func(p *post.Post, label string) neighbour {
			return neighbour{Post: p, Label: label}
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse templates: %w", err)
	}
	return &Builder{opts: opts, out: out, tmpl: tmpl, logger: logger}, nil
}

// Page is one HTML page wrapped in the site layout.
type Page struct {
	Title       string
	Description string
	Head        template.HTML
	Body        template.HTML
}

type layoutData struct {
	Page
	CSS  template.CSS
	Site Options
}

type neighbour struct {
	Post  *post.Post
	Label string
}

type blogItem struct {
	Header string
	Post   *post.Post
}

type tagGroup struct {
	Name  string
	Posts []*post.Post
}

// Build writes every page for posts, which must be ordered newest first.
// The first failure aborts the build.
func (b *Builder) Build(ctx context.Context, posts []*post.Post) error {
	css, err := b.readOptional(b.opts.StylesPath)
	if err != nil {
		return err
	}
	base := Page{Title: b.opts.Title, Description: b.opts.Description}

	steps := []func() error{
		b.copyRobots,
		func() error { return b.writeHome(base, css, posts) },
		func() error { return b.writeBlog(base, css, posts) },
		func() error { return b.writeFeed(posts) },
		func() error { return b.writeTags(base, css, posts) },
		func() error { return b.writeNamed("404.html", base, css, "404", nil) },
		func() error { return b.writePosts(css, posts) },
		b.copyStatic,
	}
	if b.opts.Archive {
		steps = append(steps, b.writeArchive)
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) writeHome(base Page, css string, posts []*post.Post) error {
	data := struct {
		Intro string
		Posts []*post.Post
		Total int
	}{b.opts.Intro, posts[:min(b.opts.HomePosts, len(posts))], len(posts)}
	return b.writeNamed("index.html", base, css, "home", data)
}

func (b *Builder) writeBlog(base Page, css string, posts []*post.Post) error {
	return b.writeNamed("blog.html", base, css, "blog", groupByMonth(posts))
}

// groupByMonth inserts a month header before each run of posts sharing a year and month.
func groupByMonth(posts []*post.Post) []blogItem {
	var (
		items       []blogItem
		year, month uint16
	)
	for i, p := range posts {
		if i == 0 || p.Date.Year != year || p.Date.Month != month {
			year, month = p.Date.Year, p.Date.Month
			items = append(items, blogItem{Header: parser.NewDate(year, month, 1).PrettyNoDay()})
		}
		items = append(items, blogItem{Post: p})
	}
	return items
}

func (b *Builder) writeTags(base Page, css string, posts []*post.Post) error {
	groups := groupByTag(posts)
	for _, g := range groups {
		if err := post.CheckTag(g.Name); err != nil {
			return fmt.Errorf("site: %w", err)
		}
	}
	if err := b.writeNamed("tags.html", base, css, "tags", groups); err != nil {
		return err
	}
	for _, g := range groups {
		if err := b.writeNamed("tag/"+g.Name+".html", base, css, "tag", g); err != nil {
			return err
		}
	}
	return nil
}

func groupByTag(posts []*post.Post) []tagGroup {
	byTag := make(map[string][]*post.Post)
	for _, p := range posts {
		for _, t := range p.Tags {
			byTag[t] = append(byTag[t], p)
		}
	}
	groups := make([]tagGroup, 0, len(byTag))
	for name, ps := range byTag {
		groups = append(groups, tagGroup{Name: name, Posts: ps})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

func (b *Builder) writePosts(css string, posts []*post.Post) error {
	chrono := make([]*post.Post, len(posts))
	for i, p := range posts {
		chrono[len(posts)-1-i] = p
	}
	for _, s := range post.Siblings(chrono) {
		head, err := b.render("post-head", s.Post)
		if err != nil {
			return err
		}
		page := Page{
			Title:       s.Post.Title + " - " + b.opts.Title,
			Description: s.Post.Description,
			Head:        head,
		}
		if err := b.writeNamed("posts/"+s.Post.Filename+".html", page, css, "post", s); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) writeNamed(path string, page Page, css, name string, data any) error {
	body, err := b.render(name, data)
	if err != nil {
		return err
	}
	page.Body = body
	return b.WritePage(path, page, css)
}

func (b *Builder) render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("site: render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// WritePage wraps page in the site layout and writes it to path.
func (b *Builder) WritePage(path string, page Page, css string) error {
	var buf bytes.Buffer
	data := layoutData{Page: page, CSS: template.CSS(css), Site: b.opts}
	if err := b.tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("site: render %s: %w", path, err)
	}
	return b.write(path, buf.Bytes())
}

func (b *Builder) write(path string, data []byte) error {
	if err := b.out.Write(path, data); err != nil {
		return fmt.Errorf("site: write %s: %w", path, err)
	}
	b.logger.Debug("build: wrote page", slog.String("path", path))
	return nil
}

func (b *Builder) copyRobots() error {
	data, err := b.readOptional(b.opts.RobotsPath)
	if err != nil || data == "" {
		return err
	}
	return b.write("robots.txt", []byte(data))
}

func (b *Builder) copyStatic() error {
	if b.opts.StaticDir == "" {
		return nil
	}
	if _, err := os.Stat(b.opts.StaticDir); errors.Is(err, fs.ErrNotExist) {
		b.logger.Warn("build: static dir missing, skipping", slog.String("path", b.opts.StaticDir))
		return nil
	}
	if err := storage.CopyDir(b.opts.StaticDir, b.out, "static"); err != nil {
		return fmt.Errorf("site: copy static: %w", err)
	}
	return nil
}

// readOptional returns the content of path, or "" when path is unset or missing.
func (b *Builder) readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		b.logger.Warn("build: input file missing, skipping", slog.String("path", path))
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("site: read %s: %w", path, err)
	}
	return string(data), nil
}
