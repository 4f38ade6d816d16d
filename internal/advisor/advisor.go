package advisor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/config"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
	"go.uber.org/zap"
)

// snippetRadius is the number of lines shown on each side of a finding
const snippetRadius = 4

// ProgressCallback is called once per rule sent to the model
type ProgressCallback func(current, total int, message string)

// Advisor attaches manual-migration guidance to findings the fixer cannot rewrite
type Advisor struct {
	guide            Guide
	config           *config.AdvisorConfig
	logger           *zap.Logger
	progressCallback ProgressCallback
}

// NewAdvisor creates an advisor backed by the Anthropic API
func NewAdvisor(cfg *config.AdvisorConfig, logger *zap.Logger) (*Advisor, error) {
	client, err := NewClient(cfg.Model, cfg.APIToken, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return NewWithGuide(client, cfg, logger), nil
}

// NewWithGuide creates an advisor around an existing Guide
func NewWithGuide(guide Guide, cfg *config.AdvisorConfig, logger *zap.Logger) *Advisor {
	return &Advisor{
		guide:  guide,
		config: cfg,
		logger: logger,
	}
}

// SetProgressCallback sets the progress callback function
func (a *Advisor) SetProgressCallback(cb ProgressCallback) {
	a.progressCallback = cb
}

func (a *Advisor) reportProgress(current, total int, message string) {
	if a.progressCallback != nil {
		a.progressCallback(current, total, message)
	}
}

// group is every manual finding of one rule, in report order
type group struct {
	ruleID   string
	severity models.Severity
	findings []*models.Finding
}

// plan returns the groups Enrich would send, most severe first
func plan(report *models.Report, maxRequests int) (groups []*group, candidates int) {
	byRule := make(map[string]*group)
	for _, f := range report.Findings {
		if f.AutoFixable || f.Advice != "" {
			continue
		}
		candidates++
		g, ok := byRule[f.RuleID]
		if !ok {
			g = &group{ruleID: f.RuleID, severity: f.Severity}
			byRule[f.RuleID] = g
			groups = append(groups, g)
		}
		g.findings = append(g.findings, f)
	}

	// Stable keeps first-seen order within a severity
	sort.SliceStable(groups, func(i, j int) bool {
		return models.GetSeverityPriority(groups[i].severity) > models.GetSeverityPriority(groups[j].severity)
	})

	if maxRequests > 0 && len(groups) > maxRequests {
		groups = groups[:maxRequests]
	}
	return groups, candidates
}

// Enrich fills Finding.Advice for non-auto-fixable findings.
// One request is made per rule and its answer is shared by every finding of that rule.
func (a *Advisor) Enrich(ctx context.Context, report *models.Report) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Model: a.guide.Model()}

	groups, candidates := plan(report, a.config.MaxFindings)
	summary.Candidates = candidates
	summary.RulesRequested = len(groups)

	a.logger.Info("Requesting migration guidance",
		zap.Int("candidates", candidates),
		zap.Int("rules", len(groups)),
		zap.String("model", summary.Model))

	advised := 0
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			a.logger.Warn("Advisor cancelled", zap.Int("advised", summary.RulesAdvised))
			summary.Duration = time.Since(start)
			return summary, err
		}

		a.reportProgress(i+1, len(groups), fmt.Sprintf("Advising: %s", g.ruleID))

		req := buildRequest(g)
		guidance, err := a.guide.Guide(ctx, req)
		if err != nil {
			a.logger.Warn("Guidance failed for rule",
				zap.String("rule_id", g.ruleID),
				zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("Rule %s: %v", g.ruleID, err))
			continue
		}

		advice := FormatAdvice(guidance)
		for _, f := range g.findings {
			f.Advice = advice
		}
		advised += len(g.findings)
		summary.RulesAdvised++
		summary.TotalTokens += guidance.TokensUsed
	}

	summary.FindingsAdvised = advised
	summary.Skipped = candidates - advised
	summary.Duration = time.Since(start)

	a.logger.Info("Migration guidance complete",
		zap.Int("rules_advised", summary.RulesAdvised),
		zap.Int("findings_advised", summary.FindingsAdvised),
		zap.Int("tokens_used", summary.TotalTokens),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

func buildRequest(g *group) *Request {
	first := g.findings[0]
	return &Request{
		RuleID:      first.RuleID,
		Title:       first.Title,
		Severity:    string(first.Severity),
		FilePath:    first.FilePath,
		LineNumber:  first.LineNumber,
		MatchedText: first.MatchedText,
		Explanation: first.Explanation,
		Snippet:     readSnippet(first.FilePath, first.LineNumber, snippetRadius),
		Occurrences: len(g.findings),
	}
}

// readSnippet returns the lines around line (1-based); empty when unreadable
func readSnippet(path string, line, radius int) string {
	data, err := os.ReadFile(path)
	if err != nil || line < 1 {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if line > len(lines) {
		return ""
	}
	from := max(line-1-radius, 0)
	to := min(line+radius, len(lines))
	return strings.Join(lines[from:to], "\n")
}
