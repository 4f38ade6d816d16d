package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/filesystem"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/project"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/rules"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidProject is returned when the scan root holds no build or settings script
var ErrInvalidProject = errors.New("not a Gradle project")

// ProgressCallback is called to report scan progress
type ProgressCallback func(phase string, current, total int, message string)

// Scanner runs the rule registry over every build file of a project
type Scanner struct {
	config           *config.Config
	logger           *zap.Logger
	registry         *rules.Registry
	walker           *filesystem.Walker
	progressCallback ProgressCallback
	mu               sync.Mutex
}

// NewScanner creates a new scanner instance
func NewScanner(cfg *config.Config, registry *rules.Registry, logger *zap.Logger) *Scanner {
	return &Scanner{
		config:   cfg,
		logger:   logger,
		registry: registry,
		walker:   filesystem.NewWalker(cfg, logger),
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(cb ProgressCallback) {
	s.progressCallback = cb
}

// reportProgress calls the progress callback if set
func (s *Scanner) reportProgress(phase string, current, total int, message string) {
	if s.progressCallback == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressCallback(phase, current, total, message)
}

// ScanResult represents the result of scanning a single file
type ScanResult struct {
	FileInfo *models.FileInfo
	Findings []*models.Finding
	Error    error
}

// Scan analyzes the project rooted at root and returns a fresh report.
// Unreadable files are counted in the report rather than failing the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*models.Report, error) {
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() || !project.IsGradleProject(root) {
		return nil, fmt.Errorf("scan %s: %w", root, ErrInvalidProject)
	}

	s.logger.Info("Starting scan",
		zap.String("path", root),
		zap.Int("rules", s.registry.Len()))

	meta := project.Inspect(root)
	report := &models.Report{
		ProjectPath:   root,
		ProjectName:   meta.Name,
		GradleVersion: meta.GradleVersion,
		MultiModule:   meta.MultiModule,
		Modules:       meta.Modules,
		Findings:      []*models.Finding{},
		StartTime:     time.Now(),
	}

	s.reportProgress("counting", 0, 0, "Collecting build files...")
	files, err := s.walker.Collect(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	s.reportProgress("counting", len(files), len(files), fmt.Sprintf("Found %d build files", len(files)))

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	report.WorkersUsed = workers

	results, err := s.scanFiles(ctx, root, files, workers)
	if err != nil {
		return nil, err
	}

	// Merge in walk order so the report does not depend on worker scheduling
	for _, result := range results {
		if result.Error != nil {
			report.ReadErrors++
			report.ErrorFiles = append(report.ErrorFiles, result.FileInfo.Path)
			continue
		}
		report.ScannedFiles++
		report.Findings = append(report.Findings, result.Findings...)
	}
	report.Recount()

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	s.logger.Info("Scan completed",
		zap.Duration("duration", report.Duration),
		zap.Int("issues_found", report.TotalIssues),
		zap.Int("files_scanned", report.ScannedFiles),
		zap.Int("read_errors", report.ReadErrors))

	return report, nil
}

// scanFiles scans files on a bounded worker pool. Each result lands in the
// slot of its file's walk index.
func (s *Scanner) scanFiles(ctx context.Context, root string, files []*models.FileInfo, workers int) ([]*ScanResult, error) {
	results := make([]*ScanResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var processed int
	var progressMu sync.Mutex

	for _, fileInfo := range files {
		if gctx.Err() != nil {
			break
		}
		fileInfo := fileInfo
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[fileInfo.Index] = s.scanFile(root, fileInfo)

			progressMu.Lock()
			processed++
			current := processed
			progressMu.Unlock()
			s.reportProgress("scanning", current, len(files), fileInfo.RelativePath)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.reportProgress("scanning", len(files), len(files), "Scan complete")
	return results, nil
}

// scanFile reads one file and runs every applicable rule over it
func (s *Scanner) scanFile(root string, fileInfo *models.FileInfo) *ScanResult {
	result := &ScanResult{
		FileInfo: fileInfo,
	}

	file, err := filesystem.ReadFile(fileInfo)
	if err != nil {
		s.logger.Warn("Failed to read build file",
			zap.String("file", fileInfo.Path),
			zap.Error(err))
		result.Error = err
		return result
	}

	module := project.ModuleFor(root, file.Path)
	limit := s.config.FindingCap()

	for _, rule := range s.registry.ForKind(file.Kind) {
		matches := rules.MatchAll(rule, file.Content, limit)
		if len(matches) == limit {
			s.logger.Debug("Finding cap reached",
				zap.String("rule", rule.ID),
				zap.String("file", file.Path),
				zap.Int("cap", limit))
		}
		for _, m := range matches {
			result.Findings = append(result.Findings, newFinding(rule, file.Path, module, m))
		}
	}

	return result
}

// newFinding copies rule metadata into a finding for one match
func newFinding(rule *rules.Rule, path, module string, m *rules.MatchResult) *models.Finding {
	matched := strings.TrimSpace(m.Matched)

	return &models.Finding{
		ID:              uuid.NewString(),
		RuleID:          rule.ID,
		Severity:        rule.Severity,
		Title:           rule.Title,
		Description:     rule.Description,
		FilePath:        path,
		LineNumber:      m.LineNumber,
		MatchedText:     matched,
		Explanation:     rule.Explain(matched),
		SuggestedFix:    rule.SuggestFix(matched, m.Line),
		AutoFixable:     rule.CanFix(matched, m.Line),
		AffectedModules: []string{module},
	}
}
