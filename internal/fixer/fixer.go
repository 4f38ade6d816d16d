// Package fixer applies automatic rewrites for findings, one file at a time
package fixer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/backup"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/filesystem"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/rules"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result messages
const (
	MsgNotAutoFixable = "This issue is not auto-fixable and requires manual intervention."
	MsgFileNotFound   = "File not found: "
	MsgNoChanges      = "No changes were made. The pattern might have already been fixed."
	MsgSuccess        = "Successfully applied fix to "
	MsgDryRun         = "Dry run: fix not written"
)

// Fixer rewrites build files for auto-fixable findings
type Fixer struct {
	config   *config.Config
	registry *rules.Registry
	backups  *backup.Manager
	logger   *zap.Logger
}

// NewFixer creates a fixer. Dry-run mode is taken from the config.
func NewFixer(cfg *config.Config, registry *rules.Registry, backups *backup.Manager, logger *zap.Logger) *Fixer {
	return &Fixer{
		config:   cfg,
		registry: registry,
		backups:  backups,
		logger:   logger,
	}
}

// fileState tracks one file across the findings of a batch
type fileState struct {
	// content is the in-memory version of the file during a dry run
	content *string
}

// ApplyFix applies the fix for a single finding. Failures are reported in the
// result, never as an error.
func (f *Fixer) ApplyFix(ctx context.Context, finding *models.Finding) *models.FixResult {
	return f.apply(ctx, finding, &fileState{})
}

// ApplyMultipleFixes applies fixes independently for every finding. Findings on
// the same file run in order; different files run concurrently. Results keep
// the order of findings.
func (f *Fixer) ApplyMultipleFixes(ctx context.Context, findings []*models.Finding) *models.BatchResult {
	results := make([]*models.FixResult, len(findings))

	// Group finding indexes by file, keeping first-appearance order
	var order []string
	groups := make(map[string][]int)
	for i, finding := range findings {
		key := filepath.Clean(finding.FilePath)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	workers := f.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, key := range order {
		indexes := groups[key]
		g.Go(func() error {
			state := &fileState{}
			for _, i := range indexes {
				results[i] = f.apply(ctx, findings[i], state)
			}
			return nil
		})
	}
	_ = g.Wait()

	batch := &models.BatchResult{
		Results: make([]*models.FixResult, 0, len(findings)),
		DryRun:  f.config.DryRun,
	}
	for _, res := range results {
		batch.Add(res)
	}

	f.logger.Info("Applied fixes",
		zap.Int("processed", batch.TotalProcessed),
		zap.Int("succeeded", batch.SuccessCount),
		zap.Int("failed", batch.FailureCount),
		zap.Bool("dry_run", batch.DryRun))

	return batch
}

func (f *Fixer) apply(ctx context.Context, finding *models.Finding, state *fileState) *models.FixResult {
	result := &models.FixResult{
		FindingID: finding.ID,
		RuleID:    finding.RuleID,
		FilePath:  finding.FilePath,
	}

	if err := ctx.Err(); err != nil {
		return fail(result, fmt.Sprintf("Fix cancelled: %v", err))
	}

	if !finding.AutoFixable {
		return fail(result, MsgNotAutoFixable)
	}

	content, err := f.read(finding.FilePath, state)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(result, MsgFileNotFound+finding.FilePath)
		}
		return fail(result, fmt.Sprintf("Failed to read %s: %v", finding.FilePath, err))
	}

	var fixed string
	rule, registered := f.registry.Lookup(finding.RuleID)
	if registered && rule.HasTransform() {
		fixed = rule.Transform(content)
	} else {
		fixed = literalFix(finding, content)
	}

	if fixed == content {
		return fail(result, MsgNoChanges)
	}

	result.Diff = UnifiedDiff(finding.FilePath, content, fixed)

	if f.config.DryRun {
		state.content = &fixed
		result.Success = true
		result.Message = MsgDryRun
		result.OriginalCode = finding.MatchedText
		result.FixedCode = finding.SuggestedFix
		return result
	}

	backupPath, err := f.backups.Snapshot(finding.FilePath)
	if err != nil {
		f.logger.Warn("Backup failed, file left unchanged",
			zap.String("file", finding.FilePath),
			zap.Error(err))
		return fail(result, fmt.Sprintf("Failed to create backup: %v", err))
	}
	result.BackupPath = backupPath

	if err := filesystem.WriteFileAtomic(finding.FilePath, []byte(fixed)); err != nil {
		f.logger.Warn("Failed to write fix",
			zap.String("file", finding.FilePath),
			zap.String("backup", backupPath),
			zap.Error(err))
		return fail(result, fmt.Sprintf("Failed to write %s: %v", finding.FilePath, err))
	}

	f.logger.Debug("Applied fix",
		zap.String("finding", finding.ID),
		zap.String("rule", finding.RuleID),
		zap.String("file", finding.FilePath),
		zap.String("backup", backupPath))

	result.Success = true
	result.Message = MsgSuccess + filepath.Base(finding.FilePath)
	result.OriginalCode = finding.MatchedText
	result.FixedCode = finding.SuggestedFix
	return result
}

func (f *Fixer) read(path string, state *fileState) (string, error) {
	if state.content != nil {
		return *state.content, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// literalFix replaces the first occurrence of the matched text with the
// suggested fix. It serves findings whose rule is no longer registered.
func literalFix(finding *models.Finding, content string) string {
	if finding.MatchedText == "" || finding.SuggestedFix == "" || finding.SuggestedFix == rules.ManualFixPlaceholder {
		return content
	}
	return strings.Replace(content, finding.MatchedText, finding.SuggestedFix, 1)
}

func fail(result *models.FixResult, message string) *models.FixResult {
	result.Success = false
	result.Message = message
	return result
}

// UnifiedDiff renders the change from before to after as a unified diff
func UnifiedDiff(path, before, after string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + filepath.ToSlash(filepath.Base(path)),
		ToFile:   "b/" + filepath.ToSlash(filepath.Base(path)),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
