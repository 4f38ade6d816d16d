package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/filesystem"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"go.uber.org/zap"
)

// severityOrder lists severities from most to least severe
var severityOrder = []models.Severity{
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
}

// FormatDuration renders d with two decimals in its largest useful unit
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}

	hours := int(d / time.Hour)
	mins := int(d % time.Hour / time.Minute)
	secs := (d % time.Minute).Seconds()
	if hours == 0 {
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Generator renders migration reports in various formats
type Generator struct {
	config *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewGenerator creates a new report generator writing console output to stdout
func NewGenerator(cfg *config.Config, logger *zap.Logger) *Generator {
	return &Generator{
		config: cfg,
		logger: logger,
		out:    os.Stdout,
	}
}

// SetOutput redirects console output
func (g *Generator) SetOutput(w io.Writer) {
	g.out = w
}

// Generate prints the report to the console when no format is configured,
// otherwise writes it to the configured (or a timestamped) file and returns its path.
func (g *Generator) Generate(report *models.Report) (string, error) {
	format := g.config.ReportFormat
	if format == "" {
		g.PrintConsole(report)
		return "", nil
	}

	ext, err := extensionFor(format)
	if err != nil {
		return "", err
	}

	path := g.config.OutputFile
	if path == "" {
		path = fmt.Sprintf("GRADLE-MIGRATION-REPORT-%s.%s", time.Now().Format("20060102-150405"), ext)
	}
	g.logger.Info("Writing report", zap.String("format", format), zap.String("path", path))

	if err := writeReport(path, ext, report); err != nil {
		return "", fmt.Errorf("failed to write %s report: %w", format, err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		return abs, nil
	}
	return path, nil
}

func writeReport(path, ext string, report *models.Report) error {
	switch ext {
	case "json":
		return SaveJSON(path, report)
	case "md":
		return filesystem.WriteFileAtomic(path, []byte(RenderMarkdown(report)))
	default:
		return filesystem.WriteFileAtomic(path, []byte(RenderText(report)))
	}
}

// extensionFor maps a report format name to its file extension
func extensionFor(format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return "json", nil
	case "txt", "text":
		return "txt", nil
	case "md", "markdown":
		return "md", nil
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}
}

// relPath shortens a finding path for display
func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

// cleanFragment collapses whitespace and truncates code for single-line output
func cleanFragment(fragment string, maxLen int) string {
	flat := strings.Join(strings.Fields(fragment), " ")
	if len(flat) > maxLen {
		return flat[:maxLen] + "..."
	}
	return flat
}
