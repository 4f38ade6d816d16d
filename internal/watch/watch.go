// Package watch reruns an analysis whenever a build script under a project changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"go.uber.org/zap"
)

// DefaultDebounce collapses editor save bursts into one rescan
const DefaultDebounce = 300 * time.Millisecond

// RescanFunc is called after a debounced batch of build-script changes
type RescanFunc func(ctx context.Context, changed []string) error

// Watcher watches a project tree for build-script changes
type Watcher struct {
	root     string
	config   *config.Config
	logger   *zap.Logger
	debounce time.Duration
	onChange RescanFunc
	ready    func()
}

// New creates a watcher for root
func New(root string, cfg *config.Config, logger *zap.Logger, onChange RescanFunc) *Watcher {
	return &Watcher{
		root:     root,
		config:   cfg,
		logger:   logger,
		debounce: DefaultDebounce,
		onChange: onChange,
	}
}

// SetDebounce overrides the quiet period before a rescan
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run blocks until ctx is cancelled. Rescan errors are logged and never stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer fsw.Close()

	dirs, err := w.addRecursive(fsw, w.root)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	w.logger.Info("Watching project", zap.String("root", w.root), zap.Int("directories", dirs))

	if w.ready != nil {
		w.ready()
	}

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if _, err := w.addRecursive(fsw, ev.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("Build script changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			pending[ev.Name] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			if err := w.onChange(ctx, changed); err != nil {
				w.logger.Warn("Rescan failed", zap.Error(err))
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", zap.Error(err))
		}
	}
}

// relevant reports whether an event touches a scanned build script outside excluded dirs
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if !w.config.ShouldScanFile(filepath.Base(ev.Name)) {
		return false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	segments := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	for _, seg := range segments {
		if w.excluded(seg) {
			return false
		}
	}
	return true
}

func (w *Watcher) excluded(name string) bool {
	for _, ex := range w.config.Exclude {
		if name == ex {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
