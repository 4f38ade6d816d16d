package models

// FixResult is the outcome of applying the fix for a single finding
type FixResult struct {
	FindingID    string `json:"finding_id"`
	RuleID       string `json:"rule_id"`
	FilePath     string `json:"file_path"`
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	BackupPath   string `json:"backup_path,omitempty"`
	OriginalCode string `json:"original_code,omitempty"`
	FixedCode    string `json:"fixed_code,omitempty"`
	Diff         string `json:"diff,omitempty"`
}

// BatchResult aggregates the results of a multi-finding fix request
type BatchResult struct {
	Results        []*FixResult `json:"results"`
	TotalProcessed int          `json:"total_processed"`
	SuccessCount   int          `json:"success_count"`
	FailureCount   int          `json:"failure_count"`
	DryRun         bool         `json:"dry_run,omitempty"`
}

// Add appends a result and updates the counters
func (b *BatchResult) Add(res *FixResult) {
	b.Results = append(b.Results, res)
	b.TotalProcessed++
	if res.Success {
		b.SuccessCount++
	} else {
		b.FailureCount++
	}
}

// Backups returns the backup path of every result that has one, keyed by the fixed file
func (b *BatchResult) Backups() map[string][]string {
	out := make(map[string][]string)
	for _, res := range b.Results {
		if res.BackupPath != "" {
			out[res.FilePath] = append(out[res.FilePath], res.BackupPath)
		}
	}
	return out
}
