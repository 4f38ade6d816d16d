package models

import "strings"

// Finding is one occurrence of a deprecated construct in a build file.
// Rule metadata is copied at creation time so later registry changes never
// alter findings that already exist.
type Finding struct {
	ID              string   `json:"id"`
	RuleID          string   `json:"rule_id"`
	Severity        Severity `json:"severity"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FilePath        string   `json:"file_path"`
	LineNumber      int      `json:"line_number"`
	MatchedText     string   `json:"matched_text"`
	Explanation     string   `json:"explanation"`
	SuggestedFix    string   `json:"suggested_fix"`
	AutoFixable     bool     `json:"auto_fixable"`
	AffectedModules []string `json:"affected_modules"`
	Advice          string   `json:"advice,omitempty"`
}

// Severity represents the severity level of a finding
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// ParseSeverity normalizes a severity name, reporting whether it is known
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityLow:
		return SeverityLow, true
	default:
		return "", false
	}
}

// GetSeverityPriority returns numeric priority for severity (higher = more severe)
func GetSeverityPriority(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}
