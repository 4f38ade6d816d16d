package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/rules"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"go.uber.org/zap"
)

const rootBuild = `plugins {
    id 'java'
}

dependencies {
    compile 'org.example:lib:1.0'
}
`

const moduleBuild = `repositories {
    jcenter()
}
task hello << {
    println 'hi'
}
`

const wrapperProps = "distributionBase=GRADLE_USER_HOME\n" +
	"distributionUrl=https\\://services.gradle.org/distributions/gradle-8.5-bin.zip\n"

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func sampleProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"settings.gradle":                          "include 'moduleA'\n",
		"build.gradle":                             rootBuild,
		"moduleA/build.gradle":                     moduleBuild,
		"gradle/wrapper/gradle-wrapper.properties": wrapperProps,
		"build/tmp/generated.gradle":               "compile 'ignored:ignored:1'\n",
	})
}

func newTestScanner(cfg *config.Config) *Scanner {
	return NewScanner(cfg, rules.MustDefault(), zap.NewNop())
}

func TestScanner_Scan(t *testing.T) {
	root := sampleProject(t)

	report, err := newTestScanner(config.Default()).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if report.ProjectName != filepath.Base(root) {
		t.Errorf("ProjectName = %q, want %q", report.ProjectName, filepath.Base(root))
	}
	if report.GradleVersion != "8.5" {
		t.Errorf("GradleVersion = %q, want 8.5", report.GradleVersion)
	}
	if !report.MultiModule || !reflect.DeepEqual(report.Modules, []string{"moduleA"}) {
		t.Errorf("Modules = %v (multi=%v), want [moduleA]", report.Modules, report.MultiModule)
	}
	if report.ScannedFiles != 4 {
		t.Errorf("ScannedFiles = %d, want 4", report.ScannedFiles)
	}

	type key struct {
		rule   string
		file   string
		line   int
		module string
	}
	var got []key
	for _, f := range report.Findings {
		rel, _ := filepath.Rel(root, f.FilePath)
		got = append(got, key{f.RuleID, filepath.ToSlash(rel), f.LineNumber, f.AffectedModules[0]})
	}
	want := []key{
		{"DEPRECATED_CONFIGURATIONS", "build.gradle", 6, "root"},
		{"GRADLE_VERSION", "gradle/wrapper/gradle-wrapper.properties", 2, "gradle"},
		{"TASK_LEFTSHIFT", "moduleA/build.gradle", 4, "moduleA"},
		{"JCENTER_REPOSITORY", "moduleA/build.gradle", 2, "moduleA"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("findings = %+v\nwant %+v", got, want)
	}

	if report.TotalIssues != 4 || report.CriticalIssues != 2 || report.AutoFixableIssues != 4 {
		t.Errorf("counts = %d/%d/%d, want 4/2/4",
			report.TotalIssues, report.CriticalIssues, report.AutoFixableIssues)
	}
}

func TestScanner_Scan_CompileDependency(t *testing.T) {
	root := writeProject(t, map[string]string{"build.gradle": rootBuild})

	report, err := newTestScanner(config.Default()).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(report.Findings) != 1 {
		t.Fatalf("Scan() found %d issues, want 1", len(report.Findings))
	}

	f := report.Findings[0]
	if f.RuleID != "DEPRECATED_CONFIGURATIONS" || f.Severity != models.SeverityCritical {
		t.Errorf("finding = %s/%s, want DEPRECATED_CONFIGURATIONS/CRITICAL", f.RuleID, f.Severity)
	}
	if f.MatchedText != "compile" {
		t.Errorf("MatchedText = %q, want %q", f.MatchedText, "compile")
	}
	if f.SuggestedFix != "implementation 'org.example:lib:1.0'" {
		t.Errorf("SuggestedFix = %q", f.SuggestedFix)
	}
	if !f.AutoFixable {
		t.Error("AutoFixable = false, want true")
	}
	if f.ID == "" {
		t.Error("finding has no id")
	}
	if !strings.Contains(f.Explanation, "'compile'") {
		t.Errorf("Explanation does not quote the match: %q", f.Explanation)
	}
	if report.GradleVersion != models.UnknownVersion {
		t.Errorf("GradleVersion = %q, want unknown", report.GradleVersion)
	}
}

func TestScanner_Scan_ManualFindings(t *testing.T) {
	root := writeProject(t, map[string]string{
		"build.gradle": "version = '1.0'\n// resolved at runtime by the loader\nprintln ext['flag']\n",
	})

	report, err := newTestScanner(config.Default()).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if report.TotalIssues != 3 {
		t.Fatalf("TotalIssues = %d, want 3", report.TotalIssues)
	}
	if report.AutoFixableIssues != 0 {
		t.Errorf("AutoFixableIssues = %d, want 0", report.AutoFixableIssues)
	}
	for _, f := range report.Findings {
		if f.SuggestedFix != rules.ManualFixPlaceholder {
			t.Errorf("%s SuggestedFix = %q, want placeholder", f.RuleID, f.SuggestedFix)
		}
	}
}

func TestScanner_Scan_FindingCap(t *testing.T) {
	root := writeProject(t, map[string]string{
		"build.gradle": strings.Repeat("jcenter()\n", 150),
	})

	cfg := config.Default()
	cfg.MaxFindingsPerRule = 100

	report, err := newTestScanner(cfg).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if report.TotalIssues != 100 {
		t.Errorf("TotalIssues = %d, want 100", report.TotalIssues)
	}
	if last := report.Findings[len(report.Findings)-1]; last.LineNumber != 100 {
		t.Errorf("last finding line = %d, want 100", last.LineNumber)
	}
}

func TestScanner_Scan_Deterministic(t *testing.T) {
	files := map[string]string{"settings.gradle": ""}
	for _, m := range []string{"a", "b", "c", "d", "e", "f"} {
		files[m+"/build.gradle"] = moduleBuild + rootBuild
	}
	root := writeProject(t, files)

	signature := func(workers int) []string {
		cfg := config.Default()
		cfg.Workers = workers
		report, err := newTestScanner(cfg).Scan(context.Background(), root)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		var sig []string
		for _, f := range report.Findings {
			sig = append(sig, f.FilePath+":"+f.RuleID+":"+f.MatchedText)
		}
		return sig
	}

	serial := signature(1)
	parallel := signature(8)
	if !reflect.DeepEqual(serial, parallel) {
		t.Errorf("finding order depends on worker count:\n%v\n%v", serial, parallel)
	}
	if len(serial) != 18 {
		t.Errorf("found %d issues, want 18", len(serial))
	}
}

func TestScanner_Scan_InvalidProject(t *testing.T) {
	s := newTestScanner(config.Default())

	if _, err := s.Scan(context.Background(), t.TempDir()); !errors.Is(err, ErrInvalidProject) {
		t.Errorf("Scan() on empty dir error = %v, want ErrInvalidProject", err)
	}

	missing := filepath.Join(t.TempDir(), "missing")
	if _, err := s.Scan(context.Background(), missing); err == nil {
		t.Error("Scan() on missing dir should fail")
	}
}

func TestScanner_Scan_Cancelled(t *testing.T) {
	root := sampleProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestScanner(config.Default()).Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}

func TestScanner_ScanFile_ReadError(t *testing.T) {
	s := newTestScanner(config.Default())

	result := s.scanFile("/nonexistent", &models.FileInfo{Path: "/nonexistent/build.gradle"})
	if result.Error == nil {
		t.Error("scanFile() expected read error")
	}
	if len(result.Findings) != 0 {
		t.Errorf("scanFile() returned %d findings for unreadable file", len(result.Findings))
	}
}

func TestScanner_Progress(t *testing.T) {
	root := sampleProject(t)
	s := newTestScanner(config.Default())

	phases := make(map[string]int)
	s.SetProgressCallback(func(phase string, current, total int, message string) {
		phases[phase]++
	})

	if _, err := s.Scan(context.Background(), root); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if phases["counting"] == 0 || phases["scanning"] == 0 {
		t.Errorf("progress phases = %v, want counting and scanning", phases)
	}
}
