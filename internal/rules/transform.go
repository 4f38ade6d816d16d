package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

// Transformer rewrites deprecated constructs. Apply works on a whole file,
// Suggest on a single line or snippet. Both must be idempotent.
type Transformer interface {
	Apply(content string) string
	Suggest(snippet string) string
}

// builtins are transforms too structural for a plain substitution list
var builtins = map[string]func() Transformer{
	"leftshift": newLeftShiftTransformer,
}

type rewrite struct {
	re      *regexp.Regexp
	replace string
}

// rewriteTransformer applies ordered regex substitutions
type rewriteTransformer struct {
	rewrites []rewrite
}

func newRewriteTransformer(specs []models.RewriteSpec) (*rewriteTransformer, error) {
	t := &rewriteTransformer{}
	for i, spec := range specs {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rewrite %d: %w", i, err)
		}
		t.rewrites = append(t.rewrites, rewrite{re: re, replace: spec.Replace})
	}
	return t, nil
}

func (t *rewriteTransformer) Apply(content string) string {
	for _, rw := range t.rewrites {
		content = rw.re.ReplaceAllString(content, rw.replace)
	}
	return content
}

func (t *rewriteTransformer) Suggest(snippet string) string {
	return t.Apply(snippet)
}

var (
	leftShiftTaskRe    = regexp.MustCompile(`\b(task\s+\w+)\s*<<\s*\{`)
	leftShiftSuggestRe = regexp.MustCompile(`\b(task\s+\w+)\s*<<\s*`)
)

// leftShiftTransformer turns `task x << { body }` into `task x { doLast { body } }`.
// Occurrences whose closure cannot be balanced are left untouched.
type leftShiftTransformer struct{}

func newLeftShiftTransformer() Transformer {
	return leftShiftTransformer{}
}

func (leftShiftTransformer) Apply(content string) string {
	matches := leftShiftTaskRe.FindAllStringSubmatchIndex(content, -1)

	// Walk backwards so earlier offsets stay valid while rewriting.
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		start, openEnd := m[0], m[1]
		head := content[m[2]:m[3]]

		closeIdx := matchingBrace(content, openEnd)
		if closeIdx < 0 {
			continue
		}

		var b strings.Builder
		b.Grow(len(content) + 16)
		b.WriteString(content[:start])
		b.WriteString(head)
		b.WriteString(" { doLast {")
		b.WriteString(content[openEnd : closeIdx+1])
		b.WriteString(" }")
		b.WriteString(content[closeIdx+1:])
		content = b.String()
	}
	return content
}

func (t leftShiftTransformer) Suggest(snippet string) string {
	if fixed := t.Apply(snippet); fixed != snippet {
		return fixed
	}
	return strings.TrimSpace(leftShiftSuggestRe.ReplaceAllString(snippet, "${1} { doLast "))
}

// matchingBrace returns the index of the '}' closing a block whose body starts
// at from, or -1. String literals and comments are skipped.
func matchingBrace(s string, from int) int {
	depth := 1
	for i := from; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"':
			i = skipString(s, i, c)
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				for i < len(s) && s[i] != '\n' {
					i++
				}
			} else if i+1 < len(s) && s[i+1] == '*' {
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return -1
				}
				i += end + 3
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipString returns the index of the quote closing the literal opened at i
func skipString(s string, i int, quote byte) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j
		case '\n':
			// unterminated single-line literal, resume after it
			return j
		}
	}
	return len(s)
}
