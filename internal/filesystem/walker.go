package filesystem

import (
	"io/fs"
	"path/filepath"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"go.uber.org/zap"
)

// Walker walks a project tree and yields the build files to scan
type Walker struct {
	config  *config.Config
	logger  *zap.Logger
	skipDir map[string]struct{}
}

// NewWalker creates a walker that skips every directory named in cfg.Exclude
func NewWalker(cfg *config.Config, logger *zap.Logger) *Walker {
	skip := make(map[string]struct{}, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		skip[name] = struct{}{}
	}
	return &Walker{config: cfg, logger: logger, skipDir: skip}
}

// Walk visits every recognized build file under root in lexical order.
// Files are numbered by their position in the walk.
func (w *Walker) Walk(root string, callback func(*models.FileInfo) error) error {
	next := 0
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are reported and skipped; the walk goes on.
			w.logger.Warn("Cannot access path", zap.String("path", path), zap.Error(err))
			return nil
		}

		if d.IsDir() {
			if path != root && w.excluded(d.Name()) {
				w.logger.Debug("Excluded directory", zap.String("path", path))
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !w.config.ShouldScanFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			w.logger.Warn("Cannot stat build file", zap.String("path", path), zap.Error(err))
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		fi := &models.FileInfo{
			Path:         path,
			RelativePath: filepath.ToSlash(rel),
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			Index:        next,
		}
		next++
		return callback(fi)
	})
}

// excluded reports whether a directory name is in the exclude set.
// Pruning happens per directory, so every segment below root gets checked.
func (w *Walker) excluded(name string) bool {
	_, ok := w.skipDir[name]
	return ok
}

// Collect returns every build file under root in walk order
func (w *Walker) Collect(root string) ([]*models.FileInfo, error) {
	var files []*models.FileInfo
	err := w.Walk(root, func(fi *models.FileInfo) error {
		files = append(files, fi)
		return nil
	})
	return files, err
}
