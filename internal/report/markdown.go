package report

import (
	"fmt"
	"strings"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

// RenderMarkdown renders a Markdown report
func RenderMarkdown(report *models.Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Gradle 9 Migration Report: %s\n\n", report.ProjectName))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Project Path | `%s` |\n", report.ProjectPath))
	sb.WriteString(fmt.Sprintf("| Gradle Version | %s |\n", report.GradleVersion))
	if report.MultiModule {
		sb.WriteString(fmt.Sprintf("| Modules | %s |\n", strings.Join(report.Modules, ", ")))
	}
	sb.WriteString(fmt.Sprintf("| Scanned Files | %d |\n", report.ScannedFiles))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(report.Duration)))
	sb.WriteString(fmt.Sprintf("| **Total Issues** | **%d** |\n", report.TotalIssues))
	sb.WriteString(fmt.Sprintf("| Critical | %d |\n", report.CriticalIssues))
	sb.WriteString(fmt.Sprintf("| Auto-fixable | %d |\n", report.AutoFixableIssues))
	sb.WriteString("\n")

	if report.TotalIssues == 0 {
		sb.WriteString("> ✅ **No migration issues found**\n")
		return sb.String()
	}

	sb.WriteString("## Issues by Severity\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("|----------|-------|\n")
	groups := report.BySeverity()
	for _, severity := range severityOrder {
		if n := len(groups[severity]); n > 0 {
			sb.WriteString(fmt.Sprintf("| %s %s | %d |\n", getSeverityEmoji(severity), severity, n))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Findings\n\n")
	for i, f := range report.Findings {
		sb.WriteString(fmt.Sprintf("### %d. %s %s\n\n", i+1, getSeverityEmoji(f.Severity), f.Title))

		sb.WriteString("| Field | Value |\n")
		sb.WriteString("|-------|-------|\n")
		sb.WriteString(fmt.Sprintf("| ID | `%s` |\n", f.ID))
		sb.WriteString(fmt.Sprintf("| Rule | `%s` |\n", f.RuleID))
		sb.WriteString(fmt.Sprintf("| File | `%s` |\n", relPath(report.ProjectPath, f.FilePath)))
		sb.WriteString(fmt.Sprintf("| Line | %d |\n", f.LineNumber))
		sb.WriteString(fmt.Sprintf("| Modules | %s |\n", strings.Join(f.AffectedModules, ", ")))
		sb.WriteString(fmt.Sprintf("| Auto-fixable | %t |\n", f.AutoFixable))
		sb.WriteString("\n")

		sb.WriteString(fmt.Sprintf("%s\n\n", f.Explanation))

		sb.WriteString("```groovy\n")
		sb.WriteString(f.MatchedText)
		sb.WriteString("\n```\n\n")

		if f.AutoFixable {
			sb.WriteString("**Suggested fix:**\n\n```groovy\n")
			sb.WriteString(f.SuggestedFix)
			sb.WriteString("\n```\n\n")
		}
		if f.Advice != "" {
			sb.WriteString(fmt.Sprintf("**Advice:** %s\n\n", f.Advice))
		}

		sb.WriteString("---\n\n")
	}

	sb.WriteString("*Generated by gradle-migrator*\n")
	return sb.String()
}

// getSeverityEmoji returns emoji for severity level
func getSeverityEmoji(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "🔴"
	case models.SeverityHigh:
		return "🟠"
	case models.SeverityMedium:
		return "🟡"
	case models.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}
