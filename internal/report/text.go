package report

import (
	"fmt"
	"strings"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

// RenderText renders a plain text report
func RenderText(report *models.Report) string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString("  GRADLE 9 MIGRATION REPORT\n")
	sb.WriteString(strings.Repeat("=", 79) + "\n\n")

	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Project:          %s\n", report.ProjectName))
	sb.WriteString(fmt.Sprintf("Project Path:     %s\n", report.ProjectPath))
	sb.WriteString(fmt.Sprintf("Gradle Version:   %s\n", report.GradleVersion))
	if report.MultiModule {
		sb.WriteString(fmt.Sprintf("Modules:          %s\n", strings.Join(report.Modules, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", report.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(report.Duration)))
	sb.WriteString(fmt.Sprintf("Scanned Files:    %d\n", report.ScannedFiles))
	sb.WriteString(fmt.Sprintf("Read Errors:      %d\n", report.ReadErrors))
	sb.WriteString(fmt.Sprintf("TOTAL ISSUES:     %d\n", report.TotalIssues))
	sb.WriteString(fmt.Sprintf("Critical:         %d\n", report.CriticalIssues))
	sb.WriteString(fmt.Sprintf("Auto-fixable:     %d\n", report.AutoFixableIssues))
	sb.WriteString("\n")

	if report.TotalIssues == 0 {
		sb.WriteString("No migration issues found.\n\n")
	} else {
		sb.WriteString("ISSUES BY SEVERITY\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		groups := report.BySeverity()
		for _, severity := range severityOrder {
			if n := len(groups[severity]); n > 0 {
				sb.WriteString(fmt.Sprintf("  %-10s: %d\n", severity, n))
			}
		}
		sb.WriteString("\n")

		sb.WriteString("DETAILED FINDINGS\n")
		sb.WriteString(strings.Repeat("=", 79) + "\n\n")

		for i, f := range report.Findings {
			sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, f.Title))
			sb.WriteString(strings.Repeat("-", 79) + "\n")
			sb.WriteString(fmt.Sprintf("ID:          %s\n", f.ID))
			sb.WriteString(fmt.Sprintf("Rule:        %s\n", f.RuleID))
			sb.WriteString(fmt.Sprintf("File:        %s\n", f.FilePath))
			sb.WriteString(fmt.Sprintf("Line:        %d\n", f.LineNumber))
			sb.WriteString(fmt.Sprintf("Severity:    %s\n", f.Severity))
			sb.WriteString(fmt.Sprintf("Modules:     %s\n", strings.Join(f.AffectedModules, ", ")))
			sb.WriteString(fmt.Sprintf("Auto-fix:    %t\n", f.AutoFixable))
			sb.WriteString(fmt.Sprintf("Code:        %s\n", f.MatchedText))
			sb.WriteString(fmt.Sprintf("Suggestion:  %s\n", f.SuggestedFix))
			sb.WriteString(fmt.Sprintf("\n%s\n", f.Explanation))
			if f.Advice != "" {
				sb.WriteString(fmt.Sprintf("\nAdvice:\n%s\n", f.Advice))
			}
			sb.WriteString("\n")
		}
	}

	if len(report.ErrorFiles) > 0 {
		sb.WriteString("UNREADABLE FILES\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, path := range report.ErrorFiles {
			sb.WriteString("  " + path + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString("End of Report\n")
	sb.WriteString(strings.Repeat("=", 79) + "\n")

	return sb.String()
}
