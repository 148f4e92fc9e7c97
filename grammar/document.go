package grammar

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hucsmn/scrooge"
	"github.com/hucsmn/scrooge/scrutil"
)

// Document is the on-disk form of a float64 rule table, loaded via
// gopkg.in/yaml.v3 (grounded on funvibe-funxy's own use of yaml.v3 for
// module configuration). It describes a set of named nodes built from
// scrutil's numeric atoms and scrooge's groupers, referencing each other
// by name, so a rule table can be authored without writing Go.
//
// Example document:
//
//	rules:
//	  rising: {kind: ascending}
//	  peak:   {kind: extremum}
//	  run:    {kind: seq, of: [peak, rising]}
//	  trend:  {kind: repeat, min: 1, max: 0, of: run}
type Document struct {
	Rules map[string]NodeSpec `yaml:"rules"`
}

// NodeSpec is one node description in a Document.
type NodeSpec struct {
	Kind string `yaml:"kind"`

	// interval
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`

	// interval_expr: spec.md §6's INT/EXPR/SYMS grammar string, e.g.
	// "[m,@+2$)" - see scrutil.NewIntervalExpr.
	Expr string `yaml:"expr"`

	// seq / or / and: names of other rules, composed in order
	Of []string `yaml:"of"`

	// repeat: a single other rule's name, repeated min..max times;
	// max <= 0 means unbounded.
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// LoadDocument parses a YAML rule document into a *Rules[float64] table.
// Every node is built with a capture name equal to its rule key,
// so outcome.Captures can be indexed by the names used in the document.
func LoadDocument(raw []byte) (*Rules[float64], error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("grammar: invalid YAML document: %w", err)
	}

	built := make(map[string]scrooge.Pattern[float64], len(doc.Rules))
	building := make(map[string]bool, len(doc.Rules))
	rules := NewRules[float64]()

	// resolve installs each rule via rules.Let as soon as it finishes
	// building, which - because a composed rule only finishes building
	// after every rule its "of:" list references has already resolved -
	// makes Rules.order reflect dependency (children-before-parents)
	// order. Run.fireNestedActions relies on that order to fire a
	// composed rule's sub-rules' actions bottom-up.
	var resolve func(name string) (scrooge.Pattern[float64], error)
	resolve = func(name string) (scrooge.Pattern[float64], error) {
		if p, ok := built[name]; ok {
			return p, nil
		}
		if building[name] {
			return nil, fmt.Errorf("grammar: rule %q participates in a reference cycle", name)
		}
		spec, ok := doc.Rules[name]
		if !ok {
			return nil, fmt.Errorf("grammar: undefined rule %q", name)
		}
		building[name] = true
		defer delete(building, name)

		p, err := buildNode(name, spec, resolve)
		if err != nil {
			return nil, err
		}
		built[name] = p
		if err := rules.Let(name, p, nil); err != nil {
			return nil, err
		}
		return p, nil
	}

	for name := range doc.Rules {
		if _, err := resolve(name); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func buildNode(name string, spec NodeSpec, resolve func(string) (scrooge.Pattern[float64], error)) (scrooge.Pattern[float64], error) {
	switch spec.Kind {
	case "interval":
		return scrutil.Interval[float64](name, spec.Lo, spec.Hi), nil
	case "interval_expr":
		return scrutil.NewIntervalExpr(name, spec.Expr)
	case "extremum":
		return scrutil.LocalExtremum[float64](name), nil
	case "ascending":
		return scrutil.Ascending[float64](name), nil
	case "seq":
		children, err := resolveAll(spec.Of, resolve)
		if err != nil {
			return nil, err
		}
		return scrooge.Seq[float64](scrooge.GroupSpec{Name: name}, children...), nil
	case "or":
		children, err := resolveAll(spec.Of, resolve)
		if err != nil {
			return nil, err
		}
		return scrooge.Or[float64](scrooge.GroupSpec{Name: name}, children...), nil
	case "and":
		children, err := resolveAll(spec.Of, resolve)
		if err != nil {
			return nil, err
		}
		return scrooge.And[float64](scrooge.GroupSpec{Name: name}, children...), nil
	case "repeat":
		if len(spec.Of) != 1 {
			return nil, fmt.Errorf("grammar: rule %q: repeat requires exactly one \"of\" entry", name)
		}
		sub, err := resolve(spec.Of[0])
		if err != nil {
			return nil, err
		}
		max := spec.Max
		if max <= 0 {
			max = scrooge.Unbounded
		}
		repSpec, err := scrooge.NewRepeatSpec(spec.Min, max)
		if err != nil {
			return nil, fmt.Errorf("grammar: rule %q: %w", name, err)
		}
		return scrooge.Repeat[float64](scrooge.GroupSpec{Name: name}, repSpec, sub), nil
	default:
		return nil, fmt.Errorf("grammar: rule %q: unknown kind %q", name, spec.Kind)
	}
}

func resolveAll(names []string, resolve func(string) (scrooge.Pattern[float64], error)) ([]scrooge.Pattern[float64], error) {
	pats := make([]scrooge.Pattern[float64], len(names))
	for i, n := range names {
		p, err := resolve(n)
		if err != nil {
			return nil, err
		}
		pats[i] = p
	}
	return pats, nil
}
