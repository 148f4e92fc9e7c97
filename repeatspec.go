package scrooge

import (
	"strconv"
	"strings"
)

// Unbounded is the sentinel RepeatSpec.Max value meaning "no upper
// bound" (∞ in spec.md §4.7's grammar).
const Unbounded = -1

// RepeatSpec is the (min_rep, max_rep) pair Repeat is configured with.
// Max == Unbounded means unbounded repetition.
type RepeatSpec struct {
	Min, Max int
}

// NewRepeatSpec validates and builds a RepeatSpec from already-resolved
// bounds - the Go-native equivalent of spec.md §4.7's "two-element list
// or singleton-map (a, b)" input form, where a, b are plain integers
// (use Unbounded for ∞).
func NewRepeatSpec(min, max int) (RepeatSpec, error) {
	if min < 0 || (max != Unbounded && max < 0) {
		return RepeatSpec{}, errNegativeRepeat
	}
	if max != Unbounded && max < min {
		min, max = max, min
	}
	return RepeatSpec{Min: min, Max: max}, nil
}

// ParseRepeatSpec implements spec.md §4.7's repeat-spec string grammar:
// "" (undef) ≡ (0, ∞); "*" ≡ (0, ∞); "+" ≡ (1, ∞); a bare non-negative
// integer "n" ≡ (n, n); and the comma form "a,b" where either side may be
// blank, defaulting to 0 and ∞ respectively.
func ParseRepeatSpec(spec string) (RepeatSpec, error) {
	switch spec {
	case "":
		return RepeatSpec{Min: 0, Max: Unbounded}, nil
	case "*":
		return RepeatSpec{Min: 0, Max: Unbounded}, nil
	case "+":
		return RepeatSpec{Min: 1, Max: Unbounded}, nil
	}

	if strings.Contains(spec, ",") {
		parts := strings.SplitN(spec, ",", 2)
		if len(parts) != 2 {
			return RepeatSpec{}, errBadRepeatSpec(spec)
		}
		min := 0
		if s := strings.TrimSpace(parts[0]); s != "" {
			n, err := parseNonNegativeInt(s)
			if err != nil {
				return RepeatSpec{}, errBadRepeatSpec(spec)
			}
			min = n
		}
		max := Unbounded
		if s := strings.TrimSpace(parts[1]); s != "" {
			n, err := parseNonNegativeInt(s)
			if err != nil {
				return RepeatSpec{}, errBadRepeatSpec(spec)
			}
			max = n
		}
		return NewRepeatSpec(min, max)
	}

	n, err := parseNonNegativeInt(strings.TrimSpace(spec))
	if err != nil {
		return RepeatSpec{}, errBadRepeatSpec(spec)
	}
	return NewRepeatSpec(n, n)
}

func parseNonNegativeInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errBadRepeatSpec(s)
	}
	return n, nil
}

// String renders the canonical comma form, the inverse of ParseRepeatSpec
// for canonical inputs (spec.md §8's round-trip property).
func (r RepeatSpec) String() string {
	if r.Max == Unbounded {
		if r.Min == 0 {
			return "*"
		}
		if r.Min == 1 {
			return "+"
		}
		return strconv.Itoa(r.Min) + ","
	}
	if r.Min == r.Max {
		return strconv.Itoa(r.Min)
	}
	return strconv.Itoa(r.Min) + "," + strconv.Itoa(r.Max)
}
