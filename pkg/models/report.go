package models

import "time"

// UnknownVersion is reported when the wrapper version cannot be determined
const UnknownVersion = "unknown"

// Report is the result of analyzing one project. It is owned by the caller
// that requested the analysis; fixed findings are removed from it afterwards.
type Report struct {
	// Project
	ProjectPath   string   `json:"project_path"`
	ProjectName   string   `json:"project_name"`
	GradleVersion string   `json:"gradle_version"`
	MultiModule   bool     `json:"multi_module"`
	Modules       []string `json:"modules"`

	// Findings in discovery order
	Findings []*Finding `json:"findings"`

	// Derived counts, see Recount
	TotalIssues       int `json:"total_issues"`
	CriticalIssues    int `json:"critical_issues"`
	AutoFixableIssues int `json:"auto_fixable_issues"`

	// Scan statistics
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	ScannedFiles int           `json:"scanned_files"`
	ReadErrors   int           `json:"read_errors"`
	ErrorFiles   []string      `json:"error_files,omitempty"`
	WorkersUsed  int           `json:"workers_used"`
}

// Recount recomputes the derived counts from the findings list
func (r *Report) Recount() {
	r.TotalIssues = len(r.Findings)
	r.CriticalIssues = 0
	r.AutoFixableIssues = 0
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			r.CriticalIssues++
		}
		if f.AutoFixable {
			r.AutoFixableIssues++
		}
	}
}

// FindByIDs returns the findings matching ids, in the order the ids were given.
// Unknown and duplicate ids are skipped.
func (r *Report) FindByIDs(ids []string) []*Finding {
	byID := make(map[string]*Finding, len(r.Findings))
	for _, f := range r.Findings {
		byID[f.ID] = f
	}

	seen := make(map[string]bool, len(ids))
	var found []*Finding
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if f, ok := byID[id]; ok {
			found = append(found, f)
		}
	}
	return found
}

// RemoveFixed drops every finding whose fix succeeded in batch and recounts.
// It returns the number of findings removed.
func (r *Report) RemoveFixed(batch *BatchResult) int {
	if batch == nil || batch.DryRun {
		return 0
	}

	fixed := make(map[string]bool)
	for _, res := range batch.Results {
		if res.Success {
			fixed[res.FindingID] = true
		}
	}
	if len(fixed) == 0 {
		return 0
	}

	remaining := make([]*Finding, 0, len(r.Findings))
	for _, f := range r.Findings {
		if !fixed[f.ID] {
			remaining = append(remaining, f)
		}
	}
	removed := len(r.Findings) - len(remaining)
	r.Findings = remaining
	r.Recount()
	return removed
}

// BySeverity groups findings by severity, preserving order within each group
func (r *Report) BySeverity() map[Severity][]*Finding {
	groups := make(map[Severity][]*Finding)
	for _, f := range r.Findings {
		groups[f.Severity] = append(groups[f.Severity], f)
	}
	return groups
}
