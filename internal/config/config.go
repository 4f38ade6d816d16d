package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the migrator configuration
type Config struct {
	// Scan settings
	Workers            int      `mapstructure:"workers"`               // number of worker goroutines
	Extensions         []string `mapstructure:"extensions"`            // script name suffixes to scan
	ExtraFiles         []string `mapstructure:"extra_files"`           // exact file names scanned in addition
	Exclude            []string `mapstructure:"exclude"`               // path segments never descended into
	MaxFindingsPerRule int      `mapstructure:"max_findings_per_rule"` // cap per rule per file

	// Rule settings
	RulesPath string `mapstructure:"rules_path"` // directory of rule YAML files, embedded table if empty

	// Fix settings
	BackupSuffix string `mapstructure:"backup_suffix"` // marker between file name and timestamp
	DryRun       bool   `mapstructure:"dry_run"`       // compute diffs without writing

	// Report settings
	ReportFormat string `mapstructure:"report_format"` // text, json, md; console if empty
	OutputFile   string `mapstructure:"output_file"`   // output file path
	StateDir     string `mapstructure:"state_dir"`     // where analysis context is kept, relative to project

	// Advisor settings
	Advisor AdvisorConfig `mapstructure:"advisor"`
}

// AdvisorConfig holds the optional migration advisor configuration
type AdvisorConfig struct {
	Enabled     bool   `mapstructure:"enabled"`      // ask the model for manual-migration guidance
	Model       string `mapstructure:"model"`        // haiku, sonnet, opus
	APIToken    string `mapstructure:"api_token"`    // Anthropic API token
	MaxFindings int    `mapstructure:"max_findings"` // cost control limit
	Timeout     int    `mapstructure:"timeout"`      // seconds per request
}

// Defaults shared by LoadConfig and tests
var (
	DefaultExtensions = []string{".gradle", ".gradle.kts"}
	DefaultExtraFiles = []string{"gradle-wrapper.properties"}
	DefaultExclude    = []string{"build", ".gradle", ".git", ".idea", "node_modules", "out"}
)

// LoadConfig loads configuration from defaults, environment variables and an
// optional config file. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("extra_files", DefaultExtraFiles)
	v.SetDefault("exclude", DefaultExclude)
	v.SetDefault("max_findings_per_rule", 100)
	v.SetDefault("rules_path", "")
	v.SetDefault("backup_suffix", ".backup.")
	v.SetDefault("dry_run", false)
	v.SetDefault("report_format", "")
	v.SetDefault("output_file", "")
	v.SetDefault("state_dir", ".gradle-migration")

	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.model", "sonnet")
	v.SetDefault("advisor.api_token", "")
	v.SetDefault("advisor.max_findings", 20)
	v.SetDefault("advisor.timeout", 30)

	v.SetEnvPrefix("GRADLE_MIGRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration without consulting env or files
func Default() *Config {
	return &Config{
		Workers:            runtime.NumCPU(),
		Extensions:         append([]string(nil), DefaultExtensions...),
		ExtraFiles:         append([]string(nil), DefaultExtraFiles...),
		Exclude:            append([]string(nil), DefaultExclude...),
		MaxFindingsPerRule: 100,
		BackupSuffix:       ".backup.",
		StateDir:           ".gradle-migration",
		Advisor: AdvisorConfig{
			Model:       "sonnet",
			MaxFindings: 20,
			Timeout:     30,
		},
	}
}

// ShouldScanFile reports whether a file name is a recognized build file
func (c *Config) ShouldScanFile(name string) bool {
	for _, extra := range c.ExtraFiles {
		if name == extra {
			return true
		}
	}
	for _, ext := range c.Extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}

// FindingCap returns the per-rule per-file finding limit
func (c *Config) FindingCap() int {
	if c.MaxFindingsPerRule <= 0 {
		return 100
	}
	return c.MaxFindingsPerRule
}
