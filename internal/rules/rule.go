package rules

import (
	"regexp"
	"strings"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

// ManualFixPlaceholder is suggested when no rewrite applies to a match
const ManualFixPlaceholder = "// TODO: Manual migration required - see explanation"

const genericExplanation = "This code pattern is deprecated or removed in Gradle 9 and requires migration."

// Rule is a compiled, immutable detection and fix definition
type Rule struct {
	ID          string
	Title       string
	Description string
	Severity    models.Severity
	AutoFixable bool
	Files       []models.ScriptKind
	Matcher     *regexp.Regexp

	explanation string
	transform   Transformer
}

// AppliesTo reports whether the rule runs on files of the given kind
func (r *Rule) AppliesTo(kind models.ScriptKind) bool {
	for _, k := range r.Files {
		if k == kind {
			return true
		}
	}
	return false
}

// Explain renders the rule's explanation for a matched snippet
func (r *Rule) Explain(matched string) string {
	if r.explanation == "" {
		return genericExplanation
	}
	return strings.ReplaceAll(r.explanation, "{match}", matched)
}

// SuggestFix returns the replacement text for a match. The transform is tried on
// the source line holding the match first, then on the matched text itself.
func (r *Rule) SuggestFix(matched, line string) string {
	if r.transform == nil {
		return ManualFixPlaceholder
	}
	for _, snippet := range []string{strings.TrimSpace(line), strings.TrimSpace(matched)} {
		if snippet == "" {
			continue
		}
		if fixed := r.transform.Suggest(snippet); fixed != snippet {
			return fixed
		}
	}
	return ManualFixPlaceholder
}

// CanFix reports whether an automatic rewrite exists for this particular match
func (r *Rule) CanFix(matched, line string) bool {
	return r.AutoFixable && r.SuggestFix(matched, line) != ManualFixPlaceholder
}

// HasTransform reports whether the rule carries any rewrite
func (r *Rule) HasTransform() bool {
	return r.transform != nil
}

// Transform rewrites every occurrence of the rule's construct in content.
// Rules without a transform return content unchanged.
func (r *Rule) Transform(content string) string {
	if r.transform == nil {
		return content
	}
	return r.transform.Apply(content)
}
