package rules

import (
	"fmt"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

// Registry is a read-only, ordered set of rules
type Registry struct {
	rules []*Rule
	byID  map[string]*Rule
}

// NewRegistry indexes rules, rejecting duplicate ids
func NewRegistry(rules []*Rule) (*Registry, error) {
	reg := &Registry{
		rules: make([]*Rule, 0, len(rules)),
		byID:  make(map[string]*Rule, len(rules)),
	}
	for _, r := range rules {
		if _, dup := reg.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %s", r.ID)
		}
		reg.rules = append(reg.rules, r)
		reg.byID[r.ID] = r
	}
	return reg, nil
}

// Lookup returns the rule with the given id
func (reg *Registry) Lookup(id string) (*Rule, bool) {
	r, ok := reg.byID[id]
	return r, ok
}

// All returns every rule in declaration order
func (reg *Registry) All() []*Rule {
	return append([]*Rule(nil), reg.rules...)
}

// ForKind returns the rules that run on files of the given kind
func (reg *Registry) ForKind(kind models.ScriptKind) []*Rule {
	var out []*Rule
	for _, r := range reg.rules {
		if r.AppliesTo(kind) {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of rules
func (reg *Registry) Len() int {
	return len(reg.rules)
}
