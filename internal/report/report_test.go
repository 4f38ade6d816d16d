package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"go.uber.org/zap"
)

func sampleReport() *models.Report {
	r := &models.Report{
		ProjectPath:   "/work/shop",
		ProjectName:   "shop",
		GradleVersion: "8.5",
		MultiModule:   true,
		Modules:       []string{"api"},
		ScannedFiles:  3,
		Duration:      1500 * time.Millisecond,
		Findings: []*models.Finding{
			{
				ID:              "11111111-1111-1111-1111-111111111111",
				RuleID:          "DEPRECATED_CONFIGURATIONS",
				Severity:        models.SeverityCritical,
				Title:           "Deprecated Configuration Usage",
				FilePath:        "/work/shop/build.gradle",
				LineNumber:      6,
				MatchedText:     "compile",
				Explanation:     "compile is gone",
				SuggestedFix:    "implementation 'org.example:lib:1.0'",
				AutoFixable:     true,
				AffectedModules: []string{"root"},
			},
			{
				ID:              "22222222-2222-2222-2222-222222222222",
				RuleID:          "DYNAMIC_PROPERTIES",
				Severity:        models.SeverityMedium,
				Title:           "Dynamic Properties Usage",
				FilePath:        "/work/shop/api/build.gradle",
				LineNumber:      2,
				MatchedText:     "ext[",
				SuggestedFix:    "// TODO: Manual migration required - see explanation",
				AffectedModules: []string{"api"},
				Advice:          "Use a typed extension.",
			},
		},
	}
	r.Recount()
	return r
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "0.50ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m30.00s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h2m3.00s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderText(t *testing.T) {
	text := RenderText(sampleReport())

	for _, want := range []string{
		"GRADLE 9 MIGRATION REPORT",
		"Gradle Version:   8.5",
		"TOTAL ISSUES:     2",
		"CRITICAL  : 1",
		"Rule:        DEPRECATED_CONFIGURATIONS",
		"Suggestion:  implementation 'org.example:lib:1.0'",
		"Use a typed extension.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("RenderText() missing %q", want)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleReport())

	for _, want := range []string{
		"# Gradle 9 Migration Report: shop",
		"| **Total Issues** | **2** |",
		"| File | `api/build.gradle` |",
		"**Suggested fix:**",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("RenderMarkdown() missing %q", want)
		}
	}

	empty := &models.Report{ProjectName: "clean"}
	if !strings.Contains(RenderMarkdown(empty), "No migration issues found") {
		t.Error("RenderMarkdown() of empty report should say so")
	}
}

func TestSaveLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gradle-migration", "report.json")
	original := sampleReport()

	if err := SaveJSON(path, original); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	findings := raw["findings"].([]any)
	if _, ok := findings[0].(map[string]any)["rule_id"]; !ok {
		t.Error("saved finding lacks rule_id field")
	}

	loaded, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if len(loaded.Findings) != 2 || loaded.Findings[0].ID != original.Findings[0].ID {
		t.Errorf("LoadJSON() findings = %+v", loaded.Findings)
	}
	if loaded.TotalIssues != 2 || loaded.CriticalIssues != 1 || loaded.AutoFixableIssues != 1 {
		t.Errorf("LoadJSON() counts = %d/%d/%d", loaded.TotalIssues, loaded.CriticalIssues, loaded.AutoFixableIssues)
	}
}

func TestLoadJSON_Missing(t *testing.T) {
	_, err := LoadJSON(filepath.Join(t.TempDir(), "report.json"))
	if !errors.Is(err, ErrNoReport) {
		t.Errorf("LoadJSON() error = %v, want ErrNoReport", err)
	}
}

func TestSaveLoadBatchJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-fix.json")
	batch := &models.BatchResult{}
	batch.Add(&models.FixResult{FindingID: "a", FilePath: "/p/build.gradle", Success: true, BackupPath: "/p/build.gradle.backup.1"})
	batch.Add(&models.FixResult{FindingID: "b", Message: "nope"})

	if err := SaveBatchJSON(path, batch); err != nil {
		t.Fatalf("SaveBatchJSON() error = %v", err)
	}
	loaded, err := LoadBatchJSON(path)
	if err != nil {
		t.Fatalf("LoadBatchJSON() error = %v", err)
	}
	if loaded.SuccessCount != 1 || loaded.FailureCount != 1 || len(loaded.Backups()["/p/build.gradle"]) != 1 {
		t.Errorf("LoadBatchJSON() = %+v", loaded)
	}
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format string
		file   string
		want   string
	}{
		{"json", "out.json", `"project_name": "shop"`},
		{"text", "out.txt", "GRADLE 9 MIGRATION REPORT"},
		{"md", "out.md", "# Gradle 9 Migration Report"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := config.Default()
			cfg.ReportFormat = tt.format
			cfg.OutputFile = filepath.Join(dir, tt.file)

			path, err := NewGenerator(cfg, zap.NewNop()).Generate(sampleReport())
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("%s report missing %q", tt.format, tt.want)
			}
		})
	}
}

func TestGenerator_UnknownFormat(t *testing.T) {
	cfg := config.Default()
	cfg.ReportFormat = "xml"

	if _, err := NewGenerator(cfg, zap.NewNop()).Generate(sampleReport()); err == nil {
		t.Error("Generate() with unknown format should fail")
	}
}

func TestGenerator_Console(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator(config.Default(), zap.NewNop())
	g.SetOutput(&buf)

	if _, err := g.Generate(sampleReport()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"DEPRECATED_CONFIGURATIONS", "11111111-1111-1111-1111-111111111111", "build.gradle:6"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q", want)
		}
	}
}

func TestGenerator_PrintBatch(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator(config.Default(), zap.NewNop())
	g.SetOutput(&buf)

	batch := &models.BatchResult{}
	batch.Add(&models.FixResult{FindingID: "abc", Success: true, Message: "Successfully applied fix to build.gradle", BackupPath: "/p/build.gradle.backup.1"})
	g.PrintBatch(batch)

	out := buf.String()
	for _, want := range []string{"abc", "Successfully applied fix to build.gradle", "/p/build.gradle.backup.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("batch output missing %q", want)
		}
	}
}
