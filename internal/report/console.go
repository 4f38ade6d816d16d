package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	dimStyle = lipgloss.NewStyle().
			Faint(true)

	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("10"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	severityStyles = map[models.Severity]lipgloss.Style{
		models.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		models.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		models.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

const separator = "───────────────────────────────────────────────────────────────"

func severityStyle(s models.Severity) lipgloss.Style {
	if style, ok := severityStyles[s]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// PrintConsole prints the report to the generator's output with colors
func (g *Generator) PrintConsole(report *models.Report) {
	w := g.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("ANALYSIS COMPLETE"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s   %s\n", labelStyle.Render("Project:"), report.ProjectPath)
	fmt.Fprintf(w, "  %s    %s\n", labelStyle.Render("Gradle:"), report.GradleVersion)
	if report.MultiModule {
		fmt.Fprintf(w, "  %s   %s\n", labelStyle.Render("Modules:"), strings.Join(report.Modules, ", "))
	}
	fmt.Fprintf(w, "  %s     %d\n", labelStyle.Render("Files:"), report.ScannedFiles)
	if report.ReadErrors > 0 {
		fmt.Fprintf(w, "  %s    %d\n", labelStyle.Render("Errors:"), report.ReadErrors)
	}
	fmt.Fprintf(w, "  %s  %s\n", labelStyle.Render("Duration:"), FormatDuration(report.Duration))
	fmt.Fprintln(w)

	if report.TotalIssues == 0 {
		fmt.Fprintf(w, "  %s\n\n", okStyle.Render("✓ No Gradle 9 migration issues found"))
		return
	}

	fmt.Fprintf(w, "  %s  (%d critical, %d auto-fixable)\n",
		failStyle.Render(fmt.Sprintf("⚠ ISSUES FOUND: %d", report.TotalIssues)),
		report.CriticalIssues, report.AutoFixableIssues)
	fmt.Fprintln(w)
	fmt.Fprintln(w, ruleStyle.Render(separator))

	for i, f := range report.Findings {
		fmt.Fprintf(w, "\n  [%d] %s\n", i+1, headerStyle.Render(f.Title))
		fmt.Fprintf(w, "      %s        %s\n", labelStyle.Render("ID:"), f.ID)
		fmt.Fprintf(w, "      %s      %s\n", labelStyle.Render("Rule:"), f.RuleID)
		fmt.Fprintf(w, "      %s  %s\n", labelStyle.Render("Severity:"), severityStyle(f.Severity).Render(string(f.Severity)))
		fmt.Fprintf(w, "      %s      %s:%d\n", labelStyle.Render("File:"), relPath(report.ProjectPath, f.FilePath), f.LineNumber)
		fmt.Fprintf(w, "      %s      %s\n", labelStyle.Render("Code:"), dimStyle.Render(cleanFragment(f.MatchedText, 120)))
		if f.AutoFixable {
			fmt.Fprintf(w, "      %s       %s\n", labelStyle.Render("Fix:"), cleanFragment(f.SuggestedFix, 120))
		} else {
			fmt.Fprintf(w, "      %s       %s\n", labelStyle.Render("Fix:"), dimStyle.Render("manual"))
		}
		if f.Advice != "" {
			fmt.Fprintf(w, "      %s    %s\n", labelStyle.Render("Advice:"), cleanFragment(f.Advice, 160))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ruleStyle.Render(separator))
	fmt.Fprintln(w)
}

// PrintBatch prints the outcome of a fix request
func (g *Generator) PrintBatch(batch *models.BatchResult) {
	w := g.out
	fmt.Fprintln(w)
	title := "FIX RESULTS"
	if batch.DryRun {
		title = "FIX RESULTS (dry run)"
	}
	fmt.Fprintln(w, headerStyle.Render(title))
	fmt.Fprintln(w)

	for _, res := range batch.Results {
		mark := okStyle.Render("✓")
		if !res.Success {
			mark = failStyle.Render("✗")
		}
		fmt.Fprintf(w, "  %s %s %s\n", mark, res.FindingID, res.Message)
		if res.BackupPath != "" {
			fmt.Fprintf(w, "      %s %s\n", labelStyle.Render("Backup:"), res.BackupPath)
		}
		if batch.DryRun && res.Diff != "" {
			for _, line := range strings.Split(strings.TrimRight(res.Diff, "\n"), "\n") {
				fmt.Fprintf(w, "      %s\n", diffLineStyle(line).Render(line))
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %d  %s %d  %s %d\n\n",
		labelStyle.Render("Processed:"), batch.TotalProcessed,
		labelStyle.Render("Succeeded:"), batch.SuccessCount,
		labelStyle.Render("Failed:"), batch.FailureCount)
}

// PrintRules prints the rule table
func (g *Generator) PrintRules(rows []RuleRow) {
	w := g.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("MIGRATION RULES"))
	fmt.Fprintln(w)
	for _, r := range rows {
		fixable := "manual"
		if r.AutoFixable {
			fixable = "auto-fix"
		}
		fmt.Fprintf(w, "  %-30s %s %-8s %s\n", r.ID, severityStyle(r.Severity).Render(fmt.Sprintf("%-8s", r.Severity)), fixable, r.Title)
	}
	fmt.Fprintln(w)
}

// RuleRow is one line of the rule listing
type RuleRow struct {
	ID          string
	Title       string
	Severity    models.Severity
	AutoFixable bool
}

func diffLineStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return labelStyle
	case strings.HasPrefix(line, "+"):
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case strings.HasPrefix(line, "-"):
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	default:
		return dimStyle
	}
}
