package models

// RuleSpec is the declarative form of a rule as stored in a rule table file
type RuleSpec struct {
	ID          string        `yaml:"id" json:"id"`
	Title       string        `yaml:"title" json:"title"`
	Description string        `yaml:"description" json:"description"`
	Severity    string        `yaml:"severity" json:"severity"`
	Pattern     string        `yaml:"pattern" json:"pattern"`
	AutoFixable bool          `yaml:"auto_fixable" json:"auto_fixable"`
	Files       []ScriptKind  `yaml:"files" json:"files,omitempty"`
	Explanation string        `yaml:"explanation" json:"explanation,omitempty"`
	Rewrites    []RewriteSpec `yaml:"rewrites" json:"rewrites,omitempty"`
	Transform   string        `yaml:"transform" json:"transform,omitempty"`
}

// RewriteSpec is one ordered regex substitution of a rule's transform.
// Replace uses regexp expansion syntax ($1, ${name}).
type RewriteSpec struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Replace string `yaml:"replace" json:"replace"`
}
