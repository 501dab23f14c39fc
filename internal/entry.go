// Package internal wires configuration, storage, rendering and transports
// into the build, serve, mcp and plaintext commands.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/mcpar-land/quill/internal/api"
	"github.com/mcpar-land/quill/internal/index"
	"github.com/mcpar-land/quill/internal/markdown"
	"github.com/mcpar-land/quill/internal/mcpserver"
	"github.com/mcpar-land/quill/internal/plaintext"
	"github.com/mcpar-land/quill/internal/post"
	"github.com/mcpar-land/quill/internal/postservice"
	"github.com/mcpar-land/quill/internal/site"
	"github.com/mcpar-land/quill/internal/sse"
	"github.com/mcpar-land/quill/internal/storage"
	"github.com/mcpar-land/quill/internal/watcher"
)

func newApplication(opts []Option, defaultLog io.Writer) (*application, *slog.Logger, error) {
	app := &application{stdout: os.Stdout, logOutput: defaultLog}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// workspace holds the components shared by the commands.
type workspace struct {
	posts  storage.Provider
	out    storage.Provider
	db     *index.DB
	loader *post.Loader
}

func (w *workspace) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}

// open prepares storage, the cache index and the post loader. The cache is
// skipped when withCache is false.
func (a *application) open(logger *slog.Logger, withCache bool) (*workspace, error) {
	cfg := a.config

	posts, err := storage.NewFS(cfg.Paths.Posts)
	if err != nil {
		return nil, fmt.Errorf("open posts dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Paths.Output, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	out, err := storage.NewFS(cfg.Paths.Output)
	if err != nil {
		return nil, fmt.Errorf("open output dir: %w", err)
	}

	renderer, err := markdown.New(cfg.Markdown.HighlightTheme)
	if err != nil {
		return nil, err
	}

	ws := &workspace{posts: posts, out: out}
	var cache index.PostIndex
	if withCache {
		if err := os.MkdirAll(filepath.Dir(cfg.Paths.Cache), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		db, err := index.Open(cfg.Paths.Cache)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		ws.db = db
		cache = db
	}
	ws.loader = post.NewLoader(posts, renderer, cache, logger)
	return ws, nil
}

// siteBuilder loads every post and renders the site.
type siteBuilder struct {
	ws      *workspace
	builder *site.Builder
	logger  *slog.Logger
	mu      sync.Mutex
}

func (b *siteBuilder) build(ctx context.Context) sse.BuildResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	posts, err := b.ws.loader.LoadAll(ctx)
	if err == nil {
		err = b.builder.Build(ctx, posts)
	}
	res := sse.BuildResult{Posts: len(posts), Duration: time.Since(start), Err: err}
	if err != nil {
		b.logger.Error("build: failed", slog.String("error", err.Error()))
		return res
	}
	b.logger.Info("build: done",
		slog.Int("posts", res.Posts),
		slog.Duration("duration", res.Duration))
	return res
}

func (a *application) newSiteBuilder(ws *workspace, logger *slog.Logger, liveReload bool) (*siteBuilder, error) {
	builder, err := site.New(ws.out, a.config.SiteOptions(liveReload), logger)
	if err != nil {
		return nil, err
	}
	return &siteBuilder{ws: ws, builder: builder, logger: logger}, nil
}

// Build renders the whole site into the output directory once.
func Build(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config
	logger.Info("Configuration loaded",
		slog.String("posts_path", cfg.Paths.Posts),
		slog.String("output_path", cfg.Paths.Output),
		slog.String("cache_path", cfg.Paths.Cache),
		slog.String("log_level", cfg.App.LogLevel.String()))

	ws, err := app.open(logger, true)
	if err != nil {
		return err
	}
	defer ws.Close()

	sb, err := app.newSiteBuilder(ws, logger, false)
	if err != nil {
		return err
	}
	return sb.build(ctx).Err
}

// Plaintext prints a boxed title and description for every post.
func Plaintext(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	ws, err := app.open(logger, false)
	if err != nil {
		return err
	}
	defer ws.Close()

	posts, err := ws.loader.LoadAll(ctx)
	if err != nil {
		return err
	}
	return plaintext.Write(app.stdout, posts)
}

// ServeMCP exposes the posts to MCP clients over stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	ws, err := app.open(logger, true)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := os.MkdirAll(app.config.Paths.Static, 0o755); err != nil {
		return fmt.Errorf("create static dir: %w", err)
	}
	static, err := storage.NewFS(app.config.Paths.Static)
	if err != nil {
		return fmt.Errorf("open static dir: %w", err)
	}

	reindex := func(ctx context.Context) error {
		_, err := ws.loader.LoadAll(ctx)
		return err
	}
	if err := reindex(ctx); err != nil {
		logger.Warn("mcp: initial index failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(mcpserver.Deps{
		Service: postservice.NewService(ws.posts, ws.db),
		Posts:   ws.posts,
		Static:  static,
		Reindex: reindex,
	})
	logger.Info("mcp: serving on stdio")
	return srv.ServeStdio()
}

// Serve builds the site, serves it over HTTP and rebuilds on source changes.
func Serve(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("posts_path", cfg.Paths.Posts),
		slog.String("output_path", cfg.Paths.Output),
		slog.String("log_level", cfg.App.LogLevel.String()))

	ws, err := app.open(logger, true)
	if err != nil {
		return err
	}
	defer ws.Close()

	sb, err := app.newSiteBuilder(ws, logger, true)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	if res := sb.build(ctx); res.Err == nil {
		ready.Store(true)
	}

	broker := sse.NewBroker(500 * time.Millisecond)
	defer broker.Close()

	svc := postservice.NewService(ws.posts, ws.db)
	apiRouter := api.NewRouter(svc, cfg.Serve.Auth.AuthEnabled(), cfg.Serve.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", api.Health)
	r.Get("/health/ready", api.Readiness(ready.Load))
	r.Mount("/api", apiRouter)
	r.Get("/events", broker.ServeHTTP)
	r.Handle("/*", api.SiteHandler(cfg.Paths.Output))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watcher.Watch(gCtx, watcher.Config{
			Dirs:     nonEmpty(cfg.Paths.Posts, cfg.Paths.Static),
			Files:    nonEmpty(cfg.Paths.Styles, cfg.Paths.Robots),
			Ignore:   []string{cfg.Paths.Output},
			Debounce: cfg.Serve.Debounce,
		}, logger, func(changed []string) {
			logger.Info("watcher: rebuilding", slog.Any("changed", changed))
			res := sb.build(gCtx)
			if res.Err == nil {
				ready.Store(true)
			}
			broker.PublishBuild(res)
		})
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

func nonEmpty(paths ...string) []string {
	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
