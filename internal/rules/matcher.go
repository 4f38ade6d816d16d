package rules

import (
	"bytes"
	"strings"
)

// MatchResult represents a single rule match in a file
type MatchResult struct {
	Rule       *Rule
	Position   int
	Length     int
	Matched    string
	LineNumber int
	Line       string
}

// MatchAll runs one rule over content, returning at most limit matches in order.
// A limit of zero or less means no limit.
func MatchAll(r *Rule, content []byte, limit int) []*MatchResult {
	n := limit
	if n <= 0 {
		n = -1
	}

	locs := r.Matcher.FindAllIndex(content, n)
	results := make([]*MatchResult, 0, len(locs))
	for _, loc := range locs {
		results = append(results, &MatchResult{
			Rule:       r,
			Position:   loc[0],
			Length:     loc[1] - loc[0],
			Matched:    string(content[loc[0]:loc[1]]),
			LineNumber: LineNumber(content, loc[0]),
			Line:       LineAt(content, loc[0]),
		})
	}
	return results
}

// LineNumber returns the 1-based line holding position
func LineNumber(content []byte, position int) int {
	if position > len(content) {
		position = len(content)
	}
	return 1 + bytes.Count(content[:position], []byte("\n"))
}

// LineAt returns the full line holding position, without its line terminator
func LineAt(content []byte, position int) string {
	if position > len(content) {
		position = len(content)
	}
	start := bytes.LastIndexByte(content[:position], '\n') + 1
	end := bytes.IndexByte(content[position:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += position
	}
	return strings.TrimRight(string(content[start:end]), "\r")
}
