package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultTable []byte

// ErrNoRules is returned when a rule source yields no rules
var ErrNoRules = errors.New("no rules defined")

// Loader loads rule tables from YAML
type Loader struct {
	rulesPath string
}

// NewLoader creates a loader. An empty path selects the built-in table.
func NewLoader(rulesPath string) *Loader {
	return &Loader{
		rulesPath: rulesPath,
	}
}

// RuleFile represents a YAML rule file
type RuleFile struct {
	Rules []*models.RuleSpec `yaml:"rules"`
}

// Load builds a registry from the built-in table or every YAML file under the rules path
func (l *Loader) Load() (*Registry, error) {
	if l.rulesPath == "" {
		return parseRegistry(defaultTable, "built-in rules")
	}

	info, err := os.Stat(l.rulesPath)
	if err != nil {
		return nil, fmt.Errorf("rules path: %w", err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(l.rulesPath)
		if err != nil {
			return nil, err
		}
		return parseRegistry(data, l.rulesPath)
	}

	var specs []*models.RuleSpec
	err = filepath.Walk(l.rulesPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories and non-YAML files
		if info.IsDir() || (filepath.Ext(path) != ".yaml" && filepath.Ext(path) != ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fileSpecs, err := Parse(data)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		specs = append(specs, fileSpecs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return build(specs, l.rulesPath)
}

// Default returns the registry built from the embedded rule table
func Default() (*Registry, error) {
	return NewLoader("").Load()
}

// MustDefault is Default for callers that cannot proceed without the built-in table
func MustDefault() *Registry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}

// Parse decodes rule specs from a YAML document
func Parse(data []byte) ([]*models.RuleSpec, error) {
	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Rules, nil
}

func parseRegistry(data []byte, source string) (*Registry, error) {
	specs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	return build(specs, source)
}

func build(specs []*models.RuleSpec, source string) (*Registry, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrNoRules)
	}

	compiled := make([]*Rule, 0, len(specs))
	for _, spec := range specs {
		r, err := Compile(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		compiled = append(compiled, r)
	}
	return NewRegistry(compiled)
}

// Compile validates a spec and turns it into a Rule
func Compile(spec *models.RuleSpec) (*Rule, error) {
	if spec.ID == "" {
		return nil, errors.New("rule without id")
	}

	severity, ok := models.ParseSeverity(spec.Severity)
	if !ok {
		return nil, fmt.Errorf("rule %s: unknown severity %q", spec.ID, spec.Severity)
	}

	if spec.Pattern == "" {
		return nil, fmt.Errorf("rule %s: empty pattern", spec.ID)
	}
	matcher, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: invalid pattern: %w", spec.ID, err)
	}

	files := spec.Files
	if len(files) == 0 {
		files = []models.ScriptKind{models.KindGroovy, models.KindKotlin}
	}

	r := &Rule{
		ID:          spec.ID,
		Title:       spec.Title,
		Description: spec.Description,
		Severity:    severity,
		AutoFixable: spec.AutoFixable,
		Files:       append([]models.ScriptKind(nil), files...),
		Matcher:     matcher,
		explanation: spec.Explanation,
	}

	switch {
	case spec.Transform != "" && len(spec.Rewrites) > 0:
		return nil, fmt.Errorf("rule %s: transform and rewrites are mutually exclusive", spec.ID)
	case spec.Transform != "":
		newTransform, ok := builtins[spec.Transform]
		if !ok {
			return nil, fmt.Errorf("rule %s: unknown transform %q", spec.ID, spec.Transform)
		}
		r.transform = newTransform()
	case len(spec.Rewrites) > 0:
		t, err := newRewriteTransformer(spec.Rewrites)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", spec.ID, err)
		}
		r.transform = t
	}

	if r.AutoFixable && r.transform == nil {
		return nil, fmt.Errorf("rule %s: auto_fixable without rewrites or transform", spec.ID)
	}

	return r, nil
}
