// Package migrator is the entry point for analyzing a project and fixing its findings
package migrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/backup"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/core"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/fixer"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/project"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/report"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/rules"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"go.uber.org/zap"
)

// Precondition errors
var (
	ErrPathRequired     = errors.New("project path is required")
	ErrPathNotAbsolute  = errors.New("project path must be absolute")
	ErrProjectNotFound  = errors.New("project directory not found")
	ErrNotGradleProject = errors.New("not a valid Gradle project (missing build.gradle or settings.gradle)")
	ErrNoIssueIDs       = errors.New("issue IDs are required")
	ErrNoReport         = errors.New("no project analysis found")
	ErrNoMatchingIssues = errors.New("no matching issues found")
)

const (
	reportFile = "report.json"
	batchFile  = "last-fix.json"
)

// Service wires the scanner, fixer and backups behind the analyze and fix operations
type Service struct {
	config   *config.Config
	registry *rules.Registry
	scanner  *core.Scanner
	fixer    *fixer.Fixer
	backups  *backup.Manager
	logger   *zap.Logger
}

// NewService creates a service over the given rule registry
func NewService(cfg *config.Config, registry *rules.Registry, logger *zap.Logger) *Service {
	backups := backup.NewManager(cfg.BackupSuffix, logger)
	return &Service{
		config:   cfg,
		registry: registry,
		scanner:  core.NewScanner(cfg, registry, logger),
		fixer:    fixer.NewFixer(cfg, registry, backups, logger),
		backups:  backups,
		logger:   logger,
	}
}

// Scanner exposes the underlying scanner, e.g. to attach a progress callback
func (s *Service) Scanner() *core.Scanner {
	return s.scanner
}

// Registry returns the rule registry the service was built with
func (s *Service) Registry() *rules.Registry {
	return s.registry
}

// Backups returns the backup manager used for fixes
func (s *Service) Backups() *backup.Manager {
	return s.backups
}

// Validate checks that path names an existing Gradle project directory
func Validate(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return ErrProjectNotFound
	}
	if !project.IsGradleProject(path) {
		return ErrNotGradleProject
	}
	return nil
}

// Analyze validates path and scans the project
func (s *Service) Analyze(ctx context.Context, path string) (*models.Report, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}

	rep, err := s.scanner.Scan(ctx, path)
	if errors.Is(err, core.ErrInvalidProject) {
		return nil, ErrNotGradleProject
	}
	return rep, err
}

// Fix applies the fixes for the findings of rep named by ids. Successful fixes
// are removed from rep and its counts recomputed.
func (s *Service) Fix(ctx context.Context, rep *models.Report, ids []string) (*models.BatchResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoIssueIDs
	}
	if rep == nil {
		return nil, ErrNoReport
	}

	findings := rep.FindByIDs(ids)
	if len(findings) == 0 {
		return nil, ErrNoMatchingIssues
	}

	s.logger.Info("Applying fixes",
		zap.Int("requested", len(ids)),
		zap.Int("matched", len(findings)))

	batch := s.fixer.ApplyMultipleFixes(ctx, findings)
	rep.RemoveFixed(batch)
	return batch, nil
}

// Restore puts a single backup back in place
func (s *Service) Restore(backupPath, originalPath string) bool {
	return s.backups.Restore(backupPath, originalPath)
}

// RestoreBatch undoes every write recorded in batch. Backups of the same file
// are restored newest first so the file ends up as it was before the batch.
// It returns the files restored and the files that could not be.
func (s *Service) RestoreBatch(batch *models.BatchResult) (restored, failed []string) {
	backups := batch.Backups()

	files := make([]string, 0, len(backups))
	for file := range backups {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		ok := true
		paths := backups[file]
		for i := len(paths) - 1; i >= 0; i-- {
			if !s.backups.Restore(paths[i], file) {
				ok = false
			}
		}
		if ok {
			restored = append(restored, file)
		} else {
			failed = append(failed, file)
		}
	}
	return restored, failed
}

// StateDir returns where the analysis context of a project is kept
func (s *Service) StateDir(projectPath string) string {
	if filepath.IsAbs(s.config.StateDir) {
		return s.config.StateDir
	}
	return filepath.Join(projectPath, s.config.StateDir)
}

// ReportPath returns the saved report location for a project
func (s *Service) ReportPath(projectPath string) string {
	return filepath.Join(s.StateDir(projectPath), reportFile)
}

// BatchPath returns the saved last-fix location for a project
func (s *Service) BatchPath(projectPath string) string {
	return filepath.Join(s.StateDir(projectPath), batchFile)
}

// SaveReport persists the analysis context for later fix requests
func (s *Service) SaveReport(rep *models.Report) error {
	return report.SaveJSON(s.ReportPath(rep.ProjectPath), rep)
}

// LoadReport reads the analysis context saved for a project
func (s *Service) LoadReport(projectPath string) (*models.Report, error) {
	rep, err := report.LoadJSON(s.ReportPath(projectPath))
	if errors.Is(err, report.ErrNoReport) {
		return nil, ErrNoReport
	}
	return rep, err
}

// SaveBatch records the outcome of the last fix request of a project
func (s *Service) SaveBatch(projectPath string, batch *models.BatchResult) error {
	return report.SaveBatchJSON(s.BatchPath(projectPath), batch)
}

// LoadBatch reads the last fix request of a project
func (s *Service) LoadBatch(projectPath string) (*models.BatchResult, error) {
	return report.LoadBatchJSON(s.BatchPath(projectPath))
}
