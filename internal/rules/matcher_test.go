package rules

import (
	"strings"
	"testing"
)

func TestMatchAll(t *testing.T) {
	r, _ := MustDefault().Lookup("DEPRECATED_CONFIGURATIONS")

	content := []byte("plugins {\n    id 'java'\n}\r\ndependencies {\n    compile 'org.example:lib:1.0'\n    testCompile 'junit:junit:4.13'\n}\n")
	results := MatchAll(r, content, 0)

	if len(results) != 2 {
		t.Fatalf("MatchAll() returned %d results, want 2", len(results))
	}

	tests := []struct {
		matched string
		line    int
		text    string
	}{
		{"compile ", 5, "    compile 'org.example:lib:1.0'"},
		{"testCompile ", 6, "    testCompile 'junit:junit:4.13'"},
	}
	for i, tt := range tests {
		got := results[i]
		if got.Matched != tt.matched {
			t.Errorf("result %d Matched = %q, want %q", i, got.Matched, tt.matched)
		}
		if got.LineNumber != tt.line {
			t.Errorf("result %d LineNumber = %d, want %d", i, got.LineNumber, tt.line)
		}
		if got.Line != tt.text {
			t.Errorf("result %d Line = %q, want %q", i, got.Line, tt.text)
		}
		if string(content[got.Position:got.Position+got.Length]) != got.Matched {
			t.Errorf("result %d position does not point at the match", i)
		}
	}
}

func TestMatchAll_Limit(t *testing.T) {
	r, _ := MustDefault().Lookup("JCENTER_REPOSITORY")
	content := []byte(strings.Repeat("jcenter()\n", 150))

	if got := len(MatchAll(r, content, 100)); got != 100 {
		t.Errorf("MatchAll() with limit 100 returned %d results", got)
	}
	if got := len(MatchAll(r, content, 0)); got != 150 {
		t.Errorf("MatchAll() without limit returned %d results, want 150", got)
	}
}

func TestLineNumber(t *testing.T) {
	content := []byte("a\nbb\n\nccc")

	tests := []struct {
		pos  int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{5, 3},
		{6, 4},
		{100, 4},
	}
	for _, tt := range tests {
		if got := LineNumber(content, tt.pos); got != tt.want {
			t.Errorf("LineNumber(%d) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestLineAt(t *testing.T) {
	content := []byte("first\r\nsecond\nthird")

	tests := []struct {
		pos  int
		want string
	}{
		{0, "first"},
		{3, "first"},
		{7, "second"},
		{15, "third"},
	}
	for _, tt := range tests {
		if got := LineAt(content, tt.pos); got != tt.want {
			t.Errorf("LineAt(%d) = %q, want %q", tt.pos, got, tt.want)
		}
	}
}
