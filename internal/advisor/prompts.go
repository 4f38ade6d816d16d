package advisor

import (
	"fmt"
	"strings"
)

// GuidanceSystemPrompt frames every request as a Gradle 9 upgrade question
const GuidanceSystemPrompt = `You are a senior build engineer helping a team upgrade a project to Gradle 9.
A static scanner flagged a construct that cannot be rewritten mechanically. Explain how to migrate it by hand.

OUTPUT: Valid JSON only, no markdown.
{
  "summary": "one or two sentences on what must change and why Gradle 9 rejects the old form",
  "steps": ["ordered, concrete edits the developer should make"],
  "replacement": "the migrated snippet for the quoted code, or empty if it depends on project details",
  "caveats": "behavior differences to verify after the change, or empty"
}

RULES:
- Target the Gradle 9 public API. Prefer lazy configuration (register, Provider, Property) over eager APIs.
- Keep the DSL of the file: Groovy for .gradle, Kotlin for .gradle.kts.
- Never invent plugin ids or coordinates that are not in the snippet.
- If the flagged text is inside a comment or string and needs no change, say so in summary and leave steps empty.`

// BuildGuidancePrompt builds the user prompt for one manual finding
func BuildGuidancePrompt(req *Request) string {
	var sb strings.Builder

	sb.WriteString("## Finding\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Rule | %s (`%s`) |\n", req.Title, req.RuleID))
	sb.WriteString(fmt.Sprintf("| Severity | %s |\n", req.Severity))
	sb.WriteString(fmt.Sprintf("| File | `%s` |\n", req.FilePath))
	sb.WriteString(fmt.Sprintf("| Line | %d |\n", req.LineNumber))
	sb.WriteString(fmt.Sprintf("| Matched | `%s` |\n", req.MatchedText))
	if req.Occurrences > 1 {
		sb.WriteString(fmt.Sprintf("| Occurrences | %d across the project |\n", req.Occurrences))
	}

	if req.Explanation != "" {
		sb.WriteString(fmt.Sprintf("\n## Scanner Note\n\n%s\n", req.Explanation))
	}

	if req.Snippet != "" {
		sb.WriteString(fmt.Sprintf("\n## Code\n\n```%s\n", syntaxLang(req.FilePath)))
		sb.WriteString(truncateCode(req.Snippet, 2000))
		sb.WriteString("\n```\n")
	}

	return sb.String()
}

func syntaxLang(path string) string {
	switch {
	case strings.HasSuffix(path, ".kts"):
		return "kotlin"
	case strings.HasSuffix(path, ".properties"):
		return "properties"
	default:
		return "groovy"
	}
}

// truncateCode cuts code to maxLen on a line boundary
func truncateCode(code string, maxLen int) string {
	code = strings.TrimSpace(code)
	if len(code) <= maxLen {
		return code
	}

	truncated := code[:maxLen]
	if idx := strings.LastIndex(truncated, "\n"); idx > maxLen/2 {
		truncated = truncated[:idx]
	}
	return truncated + "\n... [truncated]"
}

// FormatAdvice renders guidance as the plain text stored on a finding
func FormatAdvice(g *Guidance) string {
	var sb strings.Builder
	sb.WriteString(g.Summary)
	for i, step := range g.Steps {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, strings.TrimSpace(step)))
	}
	if g.Replacement != "" {
		sb.WriteString("\nReplacement:\n")
		sb.WriteString(strings.TrimRight(g.Replacement, "\n"))
	}
	if g.Caveats != "" {
		sb.WriteString("\nCaveats: ")
		sb.WriteString(g.Caveats)
	}
	return strings.TrimSpace(sb.String())
}
