// Package grammar installs named scrooge patterns as reusable rules with
// optional post-match actions, the "grammar layer" / "Action dispatch"
// DESIGN NOTES place out of the core engine's scope. It generalizes the
// teacher's capturing.go Let/V/CV (a flat string-keyed namespace of named
// sub-patterns) to a Pattern[T]-keyed rule table.
package grammar

import (
	"fmt"

	"github.com/hucsmn/scrooge"
)

// Action runs after a named rule's pattern has fully succeeded - bottom
// up, once every child rule's own action has already fired (the AND/OR
// grammar-action timing decided in SPEC_FULL.md §9). Returning a non-nil
// error makes Run return a nil outcome and that error, wrapped with the
// rule's name.
type Action[T any] func(outcome *scrooge.MatchOutcome[T]) error

// Rule pairs a pattern with the optional action fired once it matches.
type Rule[T any] struct {
	Pattern scrooge.Pattern[T]
	Action  Action[T]
}

// Rules is a named-rule table, the sequence-domain analogue of the
// teacher's Let-built namespace.
type Rules[T any] struct {
	byName map[string]Rule[T]

	// order records installation order, which for a document loaded via
	// LoadDocument is dependency order (every sub-rule a composed rule's
	// "of:" list references is Let before the rule that references it).
	// Run uses this to fire nested rules' actions bottom-up.
	order []string
}

// NewRules builds an empty rule table.
func NewRules[T any]() *Rules[T] {
	return &Rules[T]{byName: make(map[string]Rule[T])}
}

// Let installs pattern under name, the direct analogue of the teacher's
// Let(name, pattern). A nil action is valid: the rule still participates
// in matches, it just has nothing to run on success.
func (r *Rules[T]) Let(name string, pattern scrooge.Pattern[T], action Action[T]) error {
	if name == "" {
		return fmt.Errorf("grammar: rule name must not be empty")
	}
	if pattern == nil {
		return fmt.Errorf("grammar: rule %q: nil pattern", name)
	}
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = Rule[T]{Pattern: pattern, Action: action}
	return nil
}

// Lookup returns the rule installed under name, if any.
func (r *Rules[T]) Lookup(name string) (Rule[T], bool) {
	rule, ok := r.byName[name]
	return rule, ok
}

// Names lists every installed rule name.
func (r *Rules[T]) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}

// Run matches rule name against data, fires every OTHER installed rule's
// action that contributed to the match (bottom-up, in installation order -
// see Rules.order), then fires name's own action, before returning the
// outcome. This is what makes the AND/OR grammar-action timing decision in
// SPEC_FULL.md §9 ("after children, bottom-up") a real, exercised code
// path for composed rules built with seq/or/and/repeat's "of:" references,
// not just the single top-level rule.
func (r *Rules[T]) Run(name string, data scrooge.Sequence[T], cfg scrooge.Config) (*scrooge.MatchOutcome[T], error) {
	rule, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("grammar: no rule named %q", name)
	}
	outcome, err := scrooge.Match[T](data, rule.Pattern, cfg)
	if err != nil {
		return nil, fmt.Errorf("grammar: rule %q: %w", name, err)
	}
	if outcome == nil {
		return nil, nil
	}
	if err := r.fireNestedActions(outcome, name); err != nil {
		return nil, err
	}
	if rule.Action != nil {
		if err := rule.Action(outcome); err != nil {
			return nil, fmt.Errorf("grammar: rule %q action: %w", name, err)
		}
	}
	return outcome, nil
}

// fireNestedActions fires the action of every installed rule other than
// skip whose capture name shows up in outcome's capture store - i.e.
// every sub-rule a composed rule's seq/or/and/repeat "of:" list
// referenced that actually contributed a span to this match. Rules are
// visited in r.order, which for document-loaded rule tables is dependency
// order (a referenced rule is always Let before the rule that references
// it), so a deeply nested sub-rule's action fires before the rule that
// contains it.
func (r *Rules[T]) fireNestedActions(outcome *scrooge.MatchOutcome[T], skip string) error {
	for _, ruleName := range r.order {
		if ruleName == skip {
			continue
		}
		sub, ok := r.byName[ruleName]
		if !ok || sub.Action == nil {
			continue
		}
		for _, mi := range outcome.Captures.List(ruleName) {
			nested := &scrooge.MatchOutcome[T]{
				Left:            mi.Left,
				Right:           mi.Right,
				Length:          mi.Length,
				PositiveMatches: mi.PositiveMatches,
				Captures:        outcome.Captures,
				MatchID:         outcome.MatchID,
			}
			if err := sub.Action(nested); err != nil {
				return fmt.Errorf("grammar: rule %q action: %w", ruleName, err)
			}
		}
	}
	return nil
}
