package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/migrator"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/report"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/rules"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	grayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

var (
	version    = "0.3.0"
	logger     *zap.Logger
	verbose    bool
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gradle-migrator",
		Short: "Find and fix Gradle 9 breaking changes in build scripts",
		Long: `Scans Groovy and Kotlin Gradle build scripts for constructs removed or
deprecated in Gradle 9 and rewrites the mechanical ones, keeping a backup of every file it touches.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (yaml, json or toml)")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(fixCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(watchCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "\n  %s %s\n\n", errStyle.Render("✗ Error:"), userMessage(err))
		stop()
		os.Exit(1)
	}
}

// userMessage renders err for the terminal with its first letter upper-cased
func userMessage(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// newLogger builds a development logger in verbose mode and an errors-only JSON logger otherwise
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
		Encoding:         "json",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	return cfg.Build()
}

// loadService loads configuration, the rule table and the migrator service
func loadService(overrides func(*config.Config)) (*config.Config, *migrator.Service, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return nil, nil, err
	}
	if overrides != nil {
		overrides(cfg)
	}

	registry, err := rules.NewLoader(cfg.RulesPath).Load()
	if err != nil {
		logger.Error("Failed to load rules", zap.String("path", cfg.RulesPath), zap.Error(err))
		return nil, nil, fmt.Errorf("failed to load rules: %w", err)
	}

	return cfg, migrator.NewService(cfg, registry, logger), nil
}

// absPath resolves a user-supplied project path; relative paths are taken from the working directory
func absPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", migrator.ErrPathRequired
	}
	return filepath.Abs(path)
}

// validateFlags validates CLI flag values
func validateFlags(reportFormat, advisorModel string) error {
	if reportFormat != "" {
		validFormats := []string{"json", "text", "txt", "md", "markdown"}
		if !contains(validFormats, reportFormat) {
			return fmt.Errorf("--report must be one of: %s (got: %s)", strings.Join(validFormats, ", "), reportFormat)
		}
	}

	if advisorModel != "" {
		validModels := []string{"haiku", "sonnet", "opus"}
		if !contains(validModels, advisorModel) {
			return fmt.Errorf("--advisor-model must be one of: %s (got: %s)", strings.Join(validModels, ", "), advisorModel)
		}
	}

	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func newGenerator(cfg *config.Config) *report.Generator {
	return report.NewGenerator(cfg, logger)
}

// scanProgress prints a single updating progress line for the scanner
func scanProgress(phase string, current, total int, message string) {
	switch phase {
	case "counting":
		if total > 0 {
			fmt.Printf("  %s      %s\n", grayStyle.Render("Files:"), message)
		}
	case "scanning":
		if total > 0 {
			barWidth := 30
			filled := barWidth * current / total
			bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
			fmt.Printf("\r  %s  [%s] %d/%d", grayStyle.Render("Scanning:"), accentStyle.Render(bar), current, total)
			if current == total {
				fmt.Println()
			}
		}
	}
}
