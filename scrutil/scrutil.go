// Package scrutil bundles reusable atom constructors built entirely on
// scrooge's public API, the concrete "atom libraries" spec.md places out
// of the core engine's scope. It mirrors the teacher's pegutil package:
// a satellite, not a special case the engine knows about.
package scrutil

import (
	"golang.org/x/exp/constraints"

	"github.com/hucsmn/scrooge"
)

// Interval builds a single-element atom that accepts values in [lo,hi]
// (inclusive) literal typed bounds - a plain predicate over one element,
// nothing more. If hi < lo, the two bounds are swapped. It does not implement spec.md §6's INT/EXPR/SYMS string
// grammar (bracket openness, m/M/x/X/@/$/% symbols closing over
// statistics computed during prep); for that, the actual "numeric-interval
// parser" spec.md §1 names as an out-of-core atom library, see
// NewIntervalExpr in interval.go. Interval stays around as the cheap
// special case callers reach for when they already have concrete numeric
// bounds in hand and don't need the full grammar.
func Interval[T constraints.Ordered](name string, lo, hi T) scrooge.Pattern[T] {
	if hi < lo {
		lo, hi = hi, lo
	}
	return scrooge.Elem[T](name, func(v T) bool {
		return v >= lo && v <= hi
	})
}

// LocalExtremum builds a window atom that succeeds at any left offset
// whose element is a strict local maximum or minimum among its immediate
// neighbors (a window of three: left-1, left, left+1). At the two
// boundary offsets, where one neighbor is missing, only the present
// neighbor is compared. This is the "local-extremum detector" spec.md
// names as out of core scope; the original implementation's initializer
// was partial in original_source/, so this is built fresh from the
// documented algorithm rather than guessed (see DESIGN.md).
func LocalExtremum[T constraints.Ordered](name string) scrooge.Pattern[T] {
	return scrooge.Window[T](scrooge.AtomSpec{Name: name, MinQuant: "1", MaxQuant: "1"},
		func(data scrooge.Sequence[T], left, right int) scrooge.MatchResult {
			v := data.At(left)

			hasPrev := left > 0
			hasNext := right+1 < data.Len()

			var prev, next T
			if hasPrev {
				prev = data.At(left - 1)
			}
			if hasNext {
				next = data.At(left + 1)
			}

			isMax := (!hasPrev || v > prev) && (!hasNext || v > next)
			isMin := (!hasPrev || v < prev) && (!hasNext || v < next)
			if isMax || isMin {
				return scrooge.Consumed(1)
			}
			return scrooge.NoMatch()
		})
}

// Ascending builds a window atom that succeeds with the longest
// non-decreasing run starting at left, the "monotonic run" convenience
// atom local-extremum detection is usually paired with in trend-scanning
// grammars.
func Ascending[T constraints.Ordered](name string) scrooge.Pattern[T] {
	return scrooge.Window[T](scrooge.AtomSpec{Name: name, MinQuant: "1", MaxQuant: "100%"},
		func(data scrooge.Sequence[T], left, right int) scrooge.MatchResult {
			n := 1
			for i := left + 1; i <= right; i++ {
				if data.At(i) < data.At(i-1) {
					break
				}
				n++
			}
			return scrooge.Consumed(n)
		})
}
