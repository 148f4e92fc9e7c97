package scrutil

import (
	"testing"

	"github.com/hucsmn/scrooge"
)

type matchTestData struct {
	data []float64
	pat  scrooge.Pattern[float64]
	ok   bool
	left int
	n    int
}

func runMatchTestData(t *testing.T, data matchTestData) {
	outcome, err := scrooge.Match[float64](scrooge.SliceSequence[float64](data.data), data.pat, scrooge.Config{})
	if err != nil {
		t.Errorf("UNEXPECTED ERROR matching %v: %v", data.data, err)
		return
	}
	ok := outcome != nil
	if ok != data.ok {
		t.Errorf("RESULT MISMATCH: match(%v) => ok=%v != %v", data.data, ok, data.ok)
		return
	}
	if !ok {
		return
	}
	if outcome.Left != data.left || outcome.Length != data.n {
		t.Errorf("RESULT MISMATCH: match(%v) => (left=%d,n=%d) != (left=%d,n=%d)",
			data.data, outcome.Left, outcome.Length, data.left, data.n)
	}
}

func TestInterval(t *testing.T) {
	for _, data := range []matchTestData{
		{data: []float64{5, 1}, pat: Interval("v", 0.0, 10.0), ok: true, left: 0, n: 1},
		{data: []float64{-5, 1}, pat: Interval("v", 0.0, 10.0), ok: true, left: 1, n: 1},
		{data: []float64{-5}, pat: Interval("v", 0.0, 10.0), ok: false},
		// hi < lo is silently swapped, per doc comment.
		{data: []float64{5}, pat: Interval("v", 10.0, 0.0), ok: true, left: 0, n: 1},
	} {
		runMatchTestData(t, data)
	}
}

func TestNewIntervalExpr(t *testing.T) {
	mustExpr := func(spec string) scrooge.Pattern[float64] {
		p, err := NewIntervalExpr("v", spec)
		if err != nil {
			t.Fatalf("NewIntervalExpr(%q): %v", spec, err)
		}
		return p
	}

	for _, data := range []matchTestData{
		// mean=3, stdev=sqrt(8/3); "[m,M]" is just the finite min/max.
		{data: []float64{1, 3, 5}, pat: mustExpr("[m,M]"), ok: true, left: 0, n: 1},
		// exclusive lower bound at m=1 rejects the min itself.
		{data: []float64{1, 3, 5}, pat: mustExpr("(m,M]"), ok: true, left: 1, n: 1},
		// "@" alone is the mean (3): only the middle element qualifies
		// when both endpoints equal @.
		{data: []float64{1, 3, 5}, pat: mustExpr("[@,@]"), ok: true, left: 1, n: 1},
		// "inf" as the upper bound accepts anything at or above the mean.
		{data: []float64{1, 3, 5}, pat: mustExpr("[@,inf)"), ok: true, left: 1, n: 1},
		// no element is below the finite min, so an exclusive "(x,m)" (x
		// equals m here, no ±Inf present) never matches.
		{data: []float64{1, 3, 5}, pat: mustExpr("(x,m)"), ok: false},
	} {
		runMatchTestData(t, data)
	}
}

func TestNewIntervalExprRejectsMalformedSpec(t *testing.T) {
	for _, spec := range []string{
		"m,M]",      // missing opening bracket
		"[m,M",      // missing closing bracket
		"[m M]",     // missing ',' separator
		"[q,M]",     // unknown symbol
		"[m,M]extra", // trailing garbage
	} {
		if _, err := NewIntervalExpr("v", spec); err == nil {
			t.Errorf("NewIntervalExpr(%q): expected a construction-time error", spec)
		}
	}
}

func TestLocalExtremum(t *testing.T) {
	for _, data := range []matchTestData{
		// 3 is a local max between 1 and 2; the flat leading 1, 1 is
		// neither a strict max nor a strict min.
		{data: []float64{1, 1, 3, 2}, pat: LocalExtremum[float64]("e"), ok: true, left: 2, n: 1},
		// 2 is a boundary element compared only to its one neighbor (1): a max.
		{data: []float64{2, 1}, pat: LocalExtremum[float64]("e"), ok: true, left: 0, n: 1},
		// A flat run is neither a strict max nor a strict min anywhere.
		{data: []float64{1, 1, 1}, pat: LocalExtremum[float64]("e"), ok: false},
	} {
		runMatchTestData(t, data)
	}
}

func TestAscendingRun(t *testing.T) {
	for _, data := range []matchTestData{
		{data: []float64{1, 2, 3, 2}, pat: Ascending[float64]("run"), ok: true, left: 0, n: 3},
		{data: []float64{3, 2, 1}, pat: Ascending[float64]("run"), ok: true, left: 0, n: 1},
		{data: []float64{1, 1, 2}, pat: Ascending[float64]("run"), ok: true, left: 0, n: 3},
	} {
		runMatchTestData(t, data)
	}
}
