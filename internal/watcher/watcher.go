// Package watcher reports debounced batches of file changes under the site inputs.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config selects what to watch.
type Config struct {
	// Dirs are watched recursively; directories created later are added too.
	Dirs []string
	// Files are single files, watched through their parent directory.
	Files []string
	// Ignore lists directories whose events are dropped (e.g. the build output).
	Ignore []string
	// Debounce is the quiet period after the last event before onChange runs.
	Debounce time.Duration
}

// ChangeFunc receives the absolute paths that changed since the previous call.
type ChangeFunc func(changed []string)

// Watch runs until ctx is cancelled, calling onChange once per burst of events.
// Missing directories are skipped with a warning.
func Watch(ctx context.Context, cfg Config, logger *slog.Logger, onChange ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	f := newFilter(cfg)

	for _, d := range f.dirs {
		if err := addDirsRecursive(w, d, f); err != nil {
			if os.IsNotExist(err) {
				logger.Warn("watcher: dir missing, not watched", slog.String("path", d))
				continue
			}
			return err
		}
	}
	for dir := range f.fileDirs {
		if err := w.Add(dir); err != nil {
			logger.Warn("watcher: add file dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		}
	}

	logger.Info("watcher: started", slog.Any("dirs", f.dirs), slog.Any("files", cfg.Files))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending = make(map[string]struct{})
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(cfg.Debounce)
			timerCh = timer.C
			return
		}
		timer.Reset(cfg.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			logger.Debug("watcher: changes settled", slog.Int("count", len(changed)))
			onChange(changed)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 && f.inDirs(ev.Name) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name, f); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}
			if ev.Op == fsnotify.Chmod || !f.relevant(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

type filter struct {
	dirs     []string
	files    map[string]struct{}
	fileDirs map[string]struct{}
	ignore   []string
}

func newFilter(cfg Config) *filter {
	f := &filter{
		files:    make(map[string]struct{}),
		fileDirs: make(map[string]struct{}),
	}
	for _, d := range cfg.Dirs {
		if d != "" {
			f.dirs = append(f.dirs, absClean(d))
		}
	}
	for _, p := range cfg.Files {
		if p == "" {
			continue
		}
		abs := absClean(p)
		f.files[abs] = struct{}{}
		f.fileDirs[filepath.Dir(abs)] = struct{}{}
	}
	for _, d := range cfg.Ignore {
		if d != "" {
			f.ignore = append(f.ignore, absClean(d))
		}
	}
	return f
}

func (f *filter) ignored(p string) bool {
	for _, d := range f.ignore {
		if within(p, d) {
			return true
		}
	}
	return false
}

func (f *filter) inDirs(p string) bool {
	if f.ignored(p) {
		return false
	}
	for _, d := range f.dirs {
		if within(p, d) {
			return true
		}
	}
	return false
}

// relevant reports whether an event on p should trigger a rebuild. Editor
// scratch files and atomic-write temp files are skipped.
func (f *filter) relevant(p string) bool {
	p = absClean(p)
	base := filepath.Base(p)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	if _, ok := f.files[p]; ok {
		return true
	}
	return f.inDirs(p)
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string, f *filter) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if f.ignored(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func within(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+string(os.PathSeparator))
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
