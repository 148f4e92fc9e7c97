package scrooge

import "testing"

func isPositive(v int) bool { return v > 0 }
func isNegative(v int) bool { return v < 0 }
func isOdd(v int) bool      { return v%2 != 0 }

func TestOrTriesChildrenInOrder(t *testing.T) {
	// Or([isOdd],[isEven]) against an even-first element must take the
	// first alternative that matches, which is isEven here despite isOdd
	// being listed first - order sensitivity from spec.md §8.
	pat := Or[int](GroupSpec{},
		Elem[int]("odd", isOdd),
		Elem[int]("even", isEven))
	outcome, err := Match[int](SliceSequence[int]{2}, pat, defaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil {
		t.Fatalf("expected a match")
	}
	if len(outcome.Captures.List("even")) != 1 {
		t.Errorf("expected the even alternative to have matched, got captures: %v", outcome.Captures.Names())
	}
	if len(outcome.Captures.List("odd")) != 0 {
		t.Errorf("expected the odd alternative not to have matched")
	}
}

func TestOrFallsThroughOnNoMatch(t *testing.T) {
	pat := Or[int](GroupSpec{},
		Elem[int]("pos", isPositive),
		Elem[int]("neg", isNegative))
	outcome, err := Match[int](SliceSequence[int]{-3}, pat, defaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil {
		t.Fatalf("expected a match via the second alternative")
	}
	if len(outcome.Captures.List("neg")) != 1 {
		t.Errorf("expected the negative alternative to have matched")
	}
}

func TestAndRequiresAllChildrenAtTheSameSpan(t *testing.T) {
	// "positives" spans 2 elements (the 2 leading positives), "exactlyOne"
	// always consumes a single element and so requires shrinking to 1: the
	// conjunction should settle on length 1, matching only the first element.
	positives := Window[int](AtomSpec{}, func(data Sequence[int], left, right int) MatchResult {
		n := 0
		for i := left; i <= right; i++ {
			if data.At(i) <= 0 {
				break
			}
			n++
		}
		if n == 0 {
			return NoMatch()
		}
		return Consumed(n)
	})
	// A width-1 atom whose own bound is wide (default 100%), so the
	// conjunction's overall max_size stays large enough to force a real
	// shrink-and-restart inside And.apply rather than being pre-clamped
	// by prep-time bounds alone.
	exactlyOne := Window[int](AtomSpec{}, func(data Sequence[int], left, right int) MatchResult {
		if right < left {
			return NoMatch()
		}
		return Consumed(1)
	})
	pat := And[int](GroupSpec{}, positives, exactlyOne)
	outcome, err := Match[int](SliceSequence[int]{1, 2, -3}, pat, defaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil {
		t.Fatalf("expected a match")
	}
	if outcome.Length != 1 {
		t.Errorf("expected conjunction to settle at length 1, got %d", outcome.Length)
	}
}

func TestSeqBacksOffForLaterChild(t *testing.T) {
	// The first child (Any) always consumes everything it is offered, so
	// the initial greedy attempt takes the whole span and leaves the
	// second child (which needs a non-empty window summing to 2) nothing
	// to work with. Seq must shrink the first child's span by one and
	// retry before it finds the split that lets both children succeed.
	greedy := Any[int](AtomSpec{})
	sumsToTwo := Window[int](AtomSpec{}, func(data Sequence[int], left, right int) MatchResult {
		sum := 0
		for i := left; i <= right; i++ {
			sum += data.At(i)
		}
		if sum == 2 {
			return Consumed(right - left + 1)
		}
		return NoMatch()
	})
	pat := Seq[int](GroupSpec{}, greedy, sumsToTwo)

	outcome, err := Match[int](SliceSequence[int]{1, 1, 2}, pat, defaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil {
		t.Fatalf("expected a match after backing off")
	}
	if outcome.Length != 3 {
		t.Errorf("expected the full span to match after backoff, got length %d", outcome.Length)
	}
}

func TestSeqSingleChildPropagatesUnchanged(t *testing.T) {
	pat := Seq[int](GroupSpec{}, Elem[int]("e", isEven))
	outcome, err := Match[int](SliceSequence[int]{1, 4}, pat, defaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil || outcome.Left != 1 || outcome.Length != 1 {
		t.Errorf("expected a single-element match at offset 1, got %+v", outcome)
	}
}

func TestSeqManyChildrenDoesNotPanic(t *testing.T) {
	// Exercises the explicit frame-stack apply over a sequence long
	// enough that native recursion would be a concern.
	n := 200
	pats := make([]Pattern[int], n)
	for i := range pats {
		pats[i] = Elem[int]("", func(int) bool { return true })
	}
	pat := Seq[int](GroupSpec{}, pats...)
	data := make([]int, n)
	outcome, err := Match[int](SliceSequence[int](data), pat, defaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil || outcome.Length != n {
		t.Errorf("expected a full-length match of %d, got %+v", n, outcome)
	}
}

func TestRepeatGreedyThenBacksOff(t *testing.T) {
	rep, err := NewRepeatSpec(0, Unbounded)
	if err != nil {
		t.Fatalf("NewRepeatSpec: %v", err)
	}
	evens := Repeat[int](GroupSpec{}, rep, Elem[int]("e", isEven))
	pat := Seq[int](GroupSpec{}, evens, Elem[int]("last", func(v int) bool { return v == 3 }))

	outcome, err := Match[int](SliceSequence[int]{2, 4, 3}, pat, defaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil {
		t.Fatalf("expected a match")
	}
	if outcome.Length != 3 {
		t.Errorf("expected the full span to match, got length %d", outcome.Length)
	}
	if got := len(outcome.Captures.List("e")); got != 2 {
		t.Errorf("expected Repeat to have captured 2 elements, got %d", got)
	}
}

func TestRepeatRespectsMinimum(t *testing.T) {
	rep, err := NewRepeatSpec(3, 3)
	if err != nil {
		t.Fatalf("NewRepeatSpec: %v", err)
	}
	pat := Repeat[int](GroupSpec{}, rep, Elem[int]("e", isEven))
	outcome, err := Match[int](SliceSequence[int]{2, 4}, pat, defaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != nil {
		t.Errorf("expected no match since only 2 of 3 required repeats are available, got %+v", outcome)
	}
}

func TestRepeatExactlyOnceEquivalence(t *testing.T) {
	rep, err := NewRepeatSpec(1, 1)
	if err != nil {
		t.Fatalf("NewRepeatSpec: %v", err)
	}
	wrapped := Repeat[int](GroupSpec{}, rep, Elem[int]("e", isEven))
	bare := Elem[int]("e", isEven)

	for _, data := range [][]int{{2}, {3}, {}} {
		wOut, wErr := Match[int](SliceSequence[int](data), wrapped, defaultConfig)
		bOut, bErr := Match[int](SliceSequence[int](data), bare, defaultConfig)
		if (wErr == nil) != (bErr == nil) {
			t.Fatalf("error mismatch for %v: %v vs %v", data, wErr, bErr)
		}
		if (wOut == nil) != (bOut == nil) {
			t.Errorf("Repeat(1,1) vs bare atom mismatch on %v: %+v vs %+v", data, wOut, bOut)
			continue
		}
		if wOut != nil && (wOut.Left != bOut.Left || wOut.Length != bOut.Length) {
			t.Errorf("Repeat(1,1) vs bare atom span mismatch on %v: %+v vs %+v", data, wOut, bOut)
		}
	}
}
