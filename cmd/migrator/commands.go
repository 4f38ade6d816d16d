package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/advisor"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/migrator"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/report"
	"github.com/gradle-helper/gradle-version-migration-tool/internal/watch"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// analyzeCmd creates the analyze command
func analyzeCmd() *cobra.Command {
	var (
		workers      int
		exclude      []string
		rulesPath    string
		stateDir     string
		reportFormat string
		outputFile   string
		advise       bool
		advisorModel string
		advisorToken string
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Scan a Gradle project for Gradle 9 migration issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFlags(reportFormat, advisorModel); err != nil {
				return err
			}
			path, err := absPath(args[0])
			if err != nil {
				return err
			}

			cfg, svc, err := loadService(func(cfg *config.Config) {
				if workers > 0 {
					cfg.Workers = workers
				}
				if len(exclude) > 0 {
					cfg.Exclude = exclude
				}
				if rulesPath != "" {
					cfg.RulesPath = rulesPath
				}
				if stateDir != "" {
					cfg.StateDir = stateDir
				}
				if reportFormat != "" {
					cfg.ReportFormat = reportFormat
				}
				if outputFile != "" {
					cfg.OutputFile = outputFile
				}
				if advise {
					cfg.Advisor.Enabled = true
				}
				if advisorModel != "" {
					cfg.Advisor.Model = advisorModel
				}
				if advisorToken != "" {
					cfg.Advisor.APIToken = advisorToken
				}
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n  %s  %s\n", grayStyle.Render("Analyzing:"), path)
			svc.Scanner().SetProgressCallback(scanProgress)

			rep, err := svc.Analyze(cmd.Context(), path)
			if err != nil {
				logger.Error("Analysis failed", zap.Error(err))
				return err
			}

			if cfg.Advisor.Enabled {
				runAdvisor(cmd.Context(), &cfg.Advisor, rep, yes)
			}

			if err := svc.SaveReport(rep); err != nil {
				return fmt.Errorf("failed to save analysis: %w", err)
			}

			out, err := newGenerator(cfg).Generate(rep)
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Printf("\n  %s    %s\n", grayStyle.Render("Report:"), accentStyle.Render(out))
			}
			fmt.Printf("  %s %s\n\n", grayStyle.Render("Saved analysis:"), svc.ReportPath(path))
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Number of worker goroutines (default: CPU cores)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directory names to skip (comma-separated)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Rule file or directory replacing the built-in table")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "Where the analysis is saved (default: <project>/.gradle-migration)")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "Report format: json, text, md (default: console output)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	cmd.Flags().BoolVar(&advise, "advise", false, "Ask the model for guidance on issues that need manual migration")
	cmd.Flags().StringVar(&advisorModel, "advisor-model", "", "Advisor model: haiku, sonnet, opus (default: sonnet)")
	cmd.Flags().StringVar(&advisorToken, "advisor-token", "", "Anthropic API token (or set ANTHROPIC_API_KEY)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the advisor cost confirmation")

	return cmd
}

// runAdvisor enriches rep with guidance. Failures are reported and never abort the analysis.
func runAdvisor(ctx context.Context, cfg *config.AdvisorConfig, rep *models.Report, yes bool) {
	adv, err := advisor.NewAdvisor(cfg, logger)
	if err != nil {
		fmt.Printf("  %s %v\n", warnStyle.Render("⚠ Advisor disabled:"), err)
		return
	}

	estimate := advisor.EstimateCost(cfg.Model, countManualRules(rep, cfg.MaxFindings))
	if estimate.Requests == 0 {
		return
	}

	fmt.Printf("\n  %s\n", boldStyle.Render("Advisor Cost Estimate"))
	fmt.Printf("  %s      %d\n", grayStyle.Render("Requests:"), estimate.Requests)
	fmt.Printf("  %s         %s\n", grayStyle.Render("Model:"), estimate.Model)
	fmt.Printf("  %s     %s\n", grayStyle.Render("Est. Cost:"), warnStyle.Render(fmt.Sprintf("$%.2f", estimate.EstimatedCost)))

	if !yes && !confirm("Proceed with advisor requests? [Y/n]: ") {
		fmt.Printf("  %s\n", grayStyle.Render("⊘ Advisor skipped"))
		return
	}

	adv.SetProgressCallback(func(current, total int, message string) {
		fmt.Printf("\r  %s %d/%d %s", grayStyle.Render("Advising:"), current, total, grayStyle.Render(message))
		if current == total {
			fmt.Println()
		}
	})

	summary, err := adv.Enrich(ctx, rep)
	if err != nil {
		fmt.Printf("  %s %v\n", warnStyle.Render("⚠ Advisor stopped:"), err)
		return
	}
	fmt.Printf("  %s %d rules, %d issues %s\n", accentStyle.Render("✓ Advice added:"),
		summary.RulesAdvised, summary.FindingsAdvised,
		grayStyle.Render(fmt.Sprintf("(%d tokens)", summary.TotalTokens)))
	for _, e := range summary.Errors {
		fmt.Printf("  %s %s\n", warnStyle.Render("⚠"), e)
	}
}

// countManualRules counts the distinct rules with manual findings, capped at limit
func countManualRules(rep *models.Report, limit int) int {
	seen := make(map[string]bool)
	for _, f := range rep.Findings {
		if !f.AutoFixable && f.Advice == "" {
			seen[f.RuleID] = true
		}
	}
	if limit > 0 && len(seen) > limit {
		return limit
	}
	return len(seen)
}

func confirm(prompt string) bool {
	fmt.Printf("  %s", boldStyle.Render(prompt))
	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "" || input == "y" || input == "yes"
}

// fixCmd creates the fix command
func fixCmd() *cobra.Command {
	var (
		projectPath string
		stateDir    string
		all         bool
		ruleIDs     []string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "fix [issue-id...]",
		Short: "Apply automated fixes to issues from the last analysis",
		Long: `Apply fixes to issues found by the last analyze run. Issues are chosen by id,
by rule (--rule) or all auto-fixable issues at once (--all). Every rewritten file is backed up first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(projectPath)
			if err != nil {
				return err
			}

			cfg, svc, err := loadService(func(cfg *config.Config) {
				if stateDir != "" {
					cfg.StateDir = stateDir
				}
				if dryRun {
					cfg.DryRun = true
				}
			})
			if err != nil {
				return err
			}

			rep, err := svc.LoadReport(path)
			if err != nil {
				return err
			}

			ids := selectIDs(rep, args, all, ruleIDs)
			batch, err := svc.Fix(cmd.Context(), rep, ids)
			if err != nil {
				return err
			}

			newGenerator(cfg).PrintBatch(batch)

			if batch.DryRun {
				return nil
			}
			if err := svc.SaveReport(rep); err != nil {
				return fmt.Errorf("failed to update analysis: %w", err)
			}
			if err := svc.SaveBatch(path, batch); err != nil {
				return fmt.Errorf("failed to record fix batch: %w", err)
			}
			if batch.SuccessCount > 0 {
				fmt.Printf("  %s gradle-migrator restore --last --project %s\n\n", grayStyle.Render("Undo with:"), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", ".", "Project directory")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "Where the analysis is saved (default: <project>/.gradle-migration)")
	cmd.Flags().BoolVar(&all, "all", false, "Fix every auto-fixable issue")
	cmd.Flags().StringSliceVar(&ruleIDs, "rule", nil, "Fix every auto-fixable issue of these rules")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the diffs without writing files")

	return cmd
}

// selectIDs merges explicit ids with the auto-fixable findings chosen by --all or --rule, without duplicates
func selectIDs(rep *models.Report, ids []string, all bool, ruleIDs []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, id := range ids {
		add(strings.TrimSpace(id))
	}
	if !all && len(ruleIDs) == 0 {
		return out
	}
	for _, f := range rep.Findings {
		if !f.AutoFixable {
			continue
		}
		if all || contains(ruleIDs, f.RuleID) {
			add(f.ID)
		}
	}
	return out
}

// restoreCmd creates the restore command
func restoreCmd() *cobra.Command {
	var (
		projectPath string
		stateDir    string
		batchFile   string
		last        bool
		latest      string
	)

	cmd := &cobra.Command{
		Use:   "restore [<backup> [<original>]]",
		Short: "Restore files from backups",
		Long: `Restore a single file from a backup, the newest backup of a file (--latest),
or every file changed by a recorded fix batch (--batch <file> or --last).
When only a backup is given the original path is derived from its name.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := loadService(func(cfg *config.Config) {
				if stateDir != "" {
					cfg.StateDir = stateDir
				}
			})
			if err != nil {
				return err
			}

			switch {
			case len(args) == 2:
				return restoreOne(svc, args[0], args[1])

			case len(args) == 1:
				original, ok := svc.Backups().OriginalPath(args[0])
				if !ok {
					return fmt.Errorf("%s is not a backup file; pass the original path as well", args[0])
				}
				return restoreOne(svc, args[0], original)

			case latest != "":
				original, err := absPath(latest)
				if err != nil {
					return err
				}
				backupPath, ok := svc.Backups().Latest(original)
				if !ok {
					return fmt.Errorf("no backups found for %s", original)
				}
				return restoreOne(svc, backupPath, original)

			case batchFile != "" || last:
				var batch *models.BatchResult
				if batchFile != "" {
					batch, err = report.LoadBatchJSON(batchFile)
				} else {
					var path string
					if path, err = absPath(projectPath); err == nil {
						batch, err = svc.LoadBatch(path)
					}
				}
				if err != nil {
					return err
				}
				restored, failed := svc.RestoreBatch(batch)
				for _, f := range restored {
					fmt.Printf("  %s %s\n", accentStyle.Render("✓ Restored"), f)
				}
				for _, f := range failed {
					fmt.Printf("  %s %s\n", errStyle.Render("✗ Failed"), f)
				}
				if len(failed) > 0 {
					return fmt.Errorf("%d of %d files could not be restored", len(failed), len(restored)+len(failed))
				}
				if len(restored) == 0 {
					fmt.Printf("  %s\n", grayStyle.Render("Nothing to restore"))
				}
				return nil
			}

			return cmd.Help()
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", ".", "Project directory (used with --last)")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "Where the analysis is saved (default: <project>/.gradle-migration)")
	cmd.Flags().StringVar(&batchFile, "batch", "", "Restore every file changed by a saved fix batch")
	cmd.Flags().BoolVar(&last, "last", false, "Restore every file changed by the last fix of the project")
	cmd.Flags().StringVar(&latest, "latest", "", "Restore a file from its newest backup")

	return cmd
}

func restoreOne(svc *migrator.Service, backupPath, original string) error {
	if !svc.Restore(backupPath, original) {
		return fmt.Errorf("failed to restore %s from %s", original, backupPath)
	}
	fmt.Printf("\n  %s %s\n\n", accentStyle.Render("✓ Restored"), original)
	return nil
}

// rulesCmd creates the rules command
func rulesCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the migration rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := loadService(func(cfg *config.Config) {
				if rulesPath != "" {
					cfg.RulesPath = rulesPath
				}
			})
			if err != nil {
				return err
			}

			var rows []report.RuleRow
			for _, r := range svc.Registry().All() {
				rows = append(rows, report.RuleRow{
					ID:          r.ID,
					Title:       r.Title,
					Severity:    r.Severity,
					AutoFixable: r.AutoFixable,
				})
			}
			newGenerator(cfg).PrintRules(rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "Rule file or directory replacing the built-in table")
	return cmd
}

// watchCmd creates the watch command
func watchCmd() *cobra.Command {
	var (
		stateDir string
		debounce int
	)

	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Re-analyze a project whenever a build script changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}

			cfg, svc, err := loadService(func(cfg *config.Config) {
				if stateDir != "" {
					cfg.StateDir = stateDir
				}
			})
			if err != nil {
				return err
			}
			gen := newGenerator(cfg)

			analyze := func(ctx context.Context) error {
				rep, err := svc.Analyze(ctx, path)
				if err != nil {
					return err
				}
				if err := svc.SaveReport(rep); err != nil {
					return err
				}
				gen.PrintConsole(rep)
				return nil
			}

			if err := analyze(cmd.Context()); err != nil {
				return err
			}

			w := watch.New(path, cfg, logger, func(ctx context.Context, changed []string) error {
				fmt.Printf("  %s %s\n", grayStyle.Render("Changed:"), strings.Join(changed, ", "))
				return analyze(ctx)
			})
			w.SetDebounce(time.Duration(debounce) * time.Millisecond)

			fmt.Printf("  %s %s %s\n\n", accentStyle.Render("Watching"), path, grayStyle.Render("(Ctrl+C to stop)"))
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&stateDir, "state-dir", "", "Where the analysis is saved (default: <project>/.gradle-migration)")
	cmd.Flags().IntVar(&debounce, "debounce", int(watch.DefaultDebounce/time.Millisecond), "Quiet period in milliseconds before re-analyzing")
	return cmd
}
