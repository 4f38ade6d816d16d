package rules

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if reg.Len() != 15 {
		t.Errorf("Default() rule count = %d, want 15", reg.Len())
	}

	all := reg.All()
	if all[0].ID != "DEPRECATED_CONFIGURATIONS" {
		t.Errorf("All()[0] = %s, want DEPRECATED_CONFIGURATIONS", all[0].ID)
	}

	for _, r := range all {
		if r.Title == "" || r.Description == "" {
			t.Errorf("rule %s has empty title or description", r.ID)
		}
		if r.AutoFixable && !r.HasTransform() {
			t.Errorf("rule %s is auto-fixable without a transform", r.ID)
		}
		got, ok := reg.Lookup(r.ID)
		if !ok || got != r {
			t.Errorf("Lookup(%s) did not return the registered rule", r.ID)
		}
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := MustDefault()

	tests := []struct {
		id          string
		found       bool
		severity    models.Severity
		autoFixable bool
	}{
		{"DEPRECATED_CONFIGURATIONS", true, models.SeverityCritical, true},
		{"DEPRECATED_API", true, models.SeverityHigh, true},
		{"GRADLE_VERSION", true, models.SeverityCritical, true},
		{"DYNAMIC_PROPERTIES", true, models.SeverityMedium, false},
		{"BUILDSCRIPT_CLASSPATH", true, models.SeverityMedium, false},
		{"DEPRECATED_TASK_TYPES", true, models.SeverityHigh, false},
		{"BUILD_DIR", true, models.SeverityLow, false},
		{"NOT_A_RULE", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, ok := reg.Lookup(tt.id)
			if ok != tt.found {
				t.Fatalf("Lookup(%s) found = %v, want %v", tt.id, ok, tt.found)
			}
			if !ok {
				return
			}
			if r.Severity != tt.severity {
				t.Errorf("Severity = %s, want %s", r.Severity, tt.severity)
			}
			if r.AutoFixable != tt.autoFixable {
				t.Errorf("AutoFixable = %v, want %v", r.AutoFixable, tt.autoFixable)
			}
		})
	}
}

func TestRegistry_AllIsACopy(t *testing.T) {
	reg := MustDefault()

	all := reg.All()
	all[0] = nil

	if reg.All()[0] == nil {
		t.Error("All() exposes the registry's internal slice")
	}
}

func TestRegistry_ForKind(t *testing.T) {
	reg := MustDefault()

	props := reg.ForKind(models.KindProperties)
	if len(props) != 1 || props[0].ID != "GRADLE_VERSION" {
		t.Errorf("ForKind(properties) = %v, want only GRADLE_VERSION", ruleIDs(props))
	}

	groovy := reg.ForKind(models.KindGroovy)
	if len(groovy) != reg.Len()-1 {
		t.Errorf("ForKind(groovy) count = %d, want %d", len(groovy), reg.Len()-1)
	}
	for _, r := range groovy {
		if r.ID == "GRADLE_VERSION" {
			t.Error("GRADLE_VERSION must not run on build scripts")
		}
	}
}

func TestNewRegistry_Duplicate(t *testing.T) {
	a, _ := Compile(&models.RuleSpec{ID: "X", Severity: "LOW", Pattern: "x"})
	b, _ := Compile(&models.RuleSpec{ID: "X", Severity: "HIGH", Pattern: "y"})

	if _, err := NewRegistry([]*Rule{a, b}); err == nil {
		t.Error("NewRegistry() with duplicate ids should fail")
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec models.RuleSpec
		want string
	}{
		{"missing id", models.RuleSpec{Severity: "LOW", Pattern: "x"}, "without id"},
		{"unknown severity", models.RuleSpec{ID: "A", Severity: "URGENT", Pattern: "x"}, "unknown severity"},
		{"empty pattern", models.RuleSpec{ID: "A", Severity: "LOW"}, "empty pattern"},
		{"invalid pattern", models.RuleSpec{ID: "A", Severity: "LOW", Pattern: "(unclosed"}, "invalid pattern"},
		{"fixable without rewrite", models.RuleSpec{ID: "A", Severity: "LOW", Pattern: "x", AutoFixable: true}, "auto_fixable"},
		{"unknown transform", models.RuleSpec{ID: "A", Severity: "LOW", Pattern: "x", Transform: "magic"}, "unknown transform"},
		{"invalid rewrite", models.RuleSpec{
			ID: "A", Severity: "LOW", Pattern: "x",
			Rewrites: []models.RewriteSpec{{Pattern: "[", Replace: "y"}},
		}, "rewrite 0"},
		{"transform and rewrites", models.RuleSpec{
			ID: "A", Severity: "LOW", Pattern: "x", Transform: "leftshift",
			Rewrites: []models.RewriteSpec{{Pattern: "x", Replace: "y"}},
		}, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.spec
			_, err := Compile(&spec)
			if err == nil {
				t.Fatal("Compile() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Compile() error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestCompile_Defaults(t *testing.T) {
	r, err := Compile(&models.RuleSpec{ID: "A", Severity: "medium", Pattern: "x"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if r.Severity != models.SeverityMedium {
		t.Errorf("Severity = %s, want MEDIUM", r.Severity)
	}
	if !r.AppliesTo(models.KindGroovy) || !r.AppliesTo(models.KindKotlin) {
		t.Error("rule without files should apply to Groovy and Kotlin scripts")
	}
	if r.AppliesTo(models.KindProperties) {
		t.Error("rule without files should not apply to properties")
	}
	if got := r.Explain("x"); got != genericExplanation {
		t.Errorf("Explain() = %q, want generic explanation", got)
	}
	if got := r.SuggestFix("x", "x"); got != ManualFixPlaceholder {
		t.Errorf("SuggestFix() = %q, want placeholder", got)
	}
}

func TestLoader_Directory(t *testing.T) {
	dir := t.TempDir()

	first := "rules:\n  - id: B_RULE\n    severity: HIGH\n    pattern: 'foo'\n"
	second := "rules:\n  - id: A_RULE\n    severity: LOW\n    pattern: 'bar'\n    auto_fixable: true\n" +
		"    rewrites:\n      - pattern: 'bar'\n        replace: 'baz'\n"
	if err := os.WriteFile(filepath.Join(dir, "01-first.yaml"), []byte(first), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "02-second.yml"), []byte(second), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not yaml: ["), 0644); err != nil {
		t.Fatal(err)
	}

	reg, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ids := ruleIDs(reg.All())
	if strings.Join(ids, ",") != "B_RULE,A_RULE" {
		t.Errorf("Load() ids = %v, want [B_RULE A_RULE]", ids)
	}

	r, _ := reg.Lookup("A_RULE")
	if got := r.Transform("bar bar"); got != "baz baz" {
		t.Errorf("Transform() = %q, want %q", got, "baz baz")
	}
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewLoader(filepath.Join(dir, "missing")).Load(); err == nil {
		t.Error("Load() with missing path should fail")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("rules: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(empty).Load(); !errors.Is(err, ErrNoRules) {
		t.Errorf("Load() empty table error = %v, want ErrNoRules", err)
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("rules: [ {id: X"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(broken).Load(); err == nil {
		t.Error("Load() with malformed YAML should fail")
	}
}

func ruleIDs(rs []*Rule) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}
