// Package backup snapshots build files before they are rewritten and puts them back on request
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/filesystem"
	"go.uber.org/zap"
)

// DefaultSuffix separates the original file name from the backup timestamp
const DefaultSuffix = ".backup."

// maxAttempts bounds the search for a free backup name
const maxAttempts = 1000

// Manager creates and restores file backups
type Manager struct {
	suffix string
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a backup manager. An empty suffix selects DefaultSuffix.
func NewManager(suffix string, logger *zap.Logger) *Manager {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &Manager{
		suffix: suffix,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot copies path to <path><suffix><unix-millis> and returns the backup path.
// When that name is taken the timestamp is bumped until a free name is found.
func (m *Manager) Snapshot(path string) (string, error) {
	token := m.now().UnixMilli()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		backupPath := path + m.suffix + strconv.FormatInt(token, 10)

		err := filesystem.CopyFile(path, backupPath)
		if err == nil {
			m.logger.Debug("Created backup",
				zap.String("file", path),
				zap.String("backup", backupPath))
			return backupPath, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("backup %s: %w", path, err)
		}
		token++
	}

	return "", fmt.Errorf("backup %s: no free backup name after %d attempts", path, maxAttempts)
}

// Restore copies backupPath over originalPath and deletes the backup.
// It returns false when the backup is missing or any step fails.
func (m *Manager) Restore(backupPath, originalPath string) bool {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		m.logger.Warn("Backup not readable",
			zap.String("backup", backupPath),
			zap.Error(err))
		return false
	}

	if err := filesystem.WriteFileAtomic(originalPath, data); err != nil {
		m.logger.Warn("Failed to restore backup",
			zap.String("backup", backupPath),
			zap.String("file", originalPath),
			zap.Error(err))
		return false
	}

	if err := os.Remove(backupPath); err != nil {
		m.logger.Warn("Restored file but could not delete backup",
			zap.String("backup", backupPath),
			zap.Error(err))
		return false
	}

	m.logger.Info("Restored backup",
		zap.String("file", originalPath),
		zap.String("backup", backupPath))
	return true
}

// List returns the existing backups of path, oldest first
func (m *Manager) List(path string) ([]string, error) {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + m.suffix

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		path  string
		token int64
	}
	var found []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		token, err := strconv.ParseInt(strings.TrimPrefix(name, prefix), 10, 64)
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, name), token: token})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].token < found[j].token })

	backups := make([]string, 0, len(found))
	for _, c := range found {
		backups = append(backups, c.path)
	}
	return backups, nil
}

// Latest returns the newest backup of path
func (m *Manager) Latest(path string) (string, bool) {
	backups, err := m.List(path)
	if err != nil || len(backups) == 0 {
		return "", false
	}
	return backups[len(backups)-1], true
}

// OriginalPath strips the backup marker from a backup path
func (m *Manager) OriginalPath(backupPath string) (string, bool) {
	idx := strings.LastIndex(backupPath, m.suffix)
	if idx <= 0 {
		return "", false
	}
	if _, err := strconv.ParseInt(backupPath[idx+len(m.suffix):], 10, 64); err != nil {
		return "", false
	}
	return backupPath[:idx], true
}
