package scrooge

import "fmt"

// AtomSpec is the "keyed configuration" every atom constructor accepts,
// per spec.md §6's pattern construction API ("every pattern type has a
// constructor taking a keyed configuration").
type AtomSpec struct {
	// Name, if non-empty, makes this atom a capture target.
	Name string

	// MinQuant, MaxQuant bound how many elements a single application of
	// a Quantified atom may consume, as position expressions (§4.1).
	// Empty defaults to "0" and "100%" (the widest possible span).
	MinQuant, MaxQuant string

	// SubsetName, if non-empty, is the subset_name spec.md §6's Matching
	// entry point describes: instead of reading the single primary
	// container passed to Match, this atom reads the container MatchKeyed
	// registered under this name. Empty means "the primary container",
	// which is also what every atom sees under a plain Match call.
	SubsetName string
}

func (s AtomSpec) quant() quantified {
	return newQuantified(s.MinQuant, s.MaxQuant)
}

// --- Any: the constant-success atom -----------------------------------

type anyPattern[T any] struct {
	spec AtomSpec
	q    quantified
}

// Any builds the constant-success atom: it never examines an element,
// always succeeding with the longest window its quantifier allows.
func Any[T any](spec AtomSpec) Pattern[T] {
	return &anyPattern[T]{spec: spec, q: spec.quant()}
}

func (p *anyPattern[T]) name() string           { return p.spec.Name }
func (p *anyPattern[T]) children() []Pattern[T] { return nil }

func (p *anyPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	min, max, err := p.q.resolve(mi.DataLength())
	if err != nil {
		return false, err
	}
	mi.shared.setScratch(p, min, max, nil)
	return true, nil
}

func (p *anyPattern[T]) apply(mi *MatchInfo[T]) (MatchResult, error) {
	min, max := mi.bounds(p)
	n := mi.Length
	if n > max {
		n = max
	}
	if n < min {
		return NoMatch(), nil
	}
	if n == 0 {
		return ZeroWidth(), nil
	}
	return Consumed(n), nil
}

func (p *anyPattern[T]) cleanup(mi *MatchInfo[T]) { mi.shared.dropScratch(p) }

func (p *anyPattern[T]) String() string {
	return fmt.Sprintf("any<%s..%s>%s", p.spec.MinQuant, p.spec.MaxQuant, nameSuffix(p.spec.Name))
}

// --- Window: the user-callback, single-window atom ---------------------

// WindowFunc is handed the full container plus a candidate [left,right]
// window (already clamped to the atom's quantifier bounds) and must
// itself return one of the four apply outcomes (spec.md §4.3) for that
// window - the engine validates the result against the window's length.
type WindowFunc[T any] func(data Sequence[T], left, right int) MatchResult

type windowPattern[T any] struct {
	spec AtomSpec
	q    quantified
	fn   WindowFunc[T]
}

// Window builds a quantified atom whose matching logic is entirely
// user-supplied: fn decides, for a given window, which of the four
// apply outcomes applies. This is the "single-window" callback flavor
// named in spec.md §2.
func Window[T any](spec AtomSpec, fn WindowFunc[T]) Pattern[T] {
	return &windowPattern[T]{spec: spec, q: spec.quant(), fn: fn}
}

func (p *windowPattern[T]) name() string           { return p.spec.Name }
func (p *windowPattern[T]) children() []Pattern[T] { return nil }

func (p *windowPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	min, max, err := p.q.resolve(mi.DataLength())
	if err != nil {
		return false, err
	}
	mi.shared.setScratch(p, min, max, nil)
	return true, nil
}

func (p *windowPattern[T]) apply(mi *MatchInfo[T]) (result MatchResult, err error) {
	min, max := mi.bounds(p)
	length := mi.Length
	if length > max {
		length = max
	}
	if length < min {
		return NoMatch(), nil
	}
	right := mi.Left + length - 1

	defer func() {
		if r := recover(); r != nil {
			err = callbackError(p.spec.Name, r)
		}
	}()
	result = p.fn(mi.NamedData(p.spec.SubsetName), mi.Left, right)
	if !validateResult(result, length) {
		return MatchResult{}, contractViolation("window atom", p.spec.Name, 0, "<callback>", rawN(result), length)
	}
	return result, nil
}

func (p *windowPattern[T]) cleanup(mi *MatchInfo[T]) { mi.shared.dropScratch(p) }

func (p *windowPattern[T]) String() string {
	return fmt.Sprintf("window<%s..%s>%s", p.spec.MinQuant, p.spec.MaxQuant, nameSuffix(p.spec.Name))
}

// --- PrepWindow: a single-window atom with prep-time scratch ------------

// PrepFunc computes, once per container, the arbitrary scratch payload a
// PrepWindow atom's apply calls will share - spec.md §3's "per-node
// scratch: precomputed subroutines, caches, parsed intervals" example.
// A false ok with a nil error means this atom cannot match this container
// at all (a soft prep failure, not a hard error).
type PrepFunc[T any] func(data Sequence[T]) (scratch any, ok bool, err error)

// PrepWindowFunc decides a window's outcome given the scratch PrepFunc
// computed once for this container.
type PrepWindowFunc[T any] func(data Sequence[T], left, right int, scratch any) MatchResult

type prepWindowPattern[T any] struct {
	spec    AtomSpec
	q       quantified
	prepFn  PrepFunc[T]
	applyFn PrepWindowFunc[T]
}

// PrepWindow builds a quantified atom like Window, but whose apply calls
// share a scratch value computed exactly once per container during prep,
// rather than recomputing it on every window - the hook atom libraries
// like scrutil's numeric-interval matcher need to close over data
// statistics (mean, stdev, min/max) without rescanning the container at
// every offset the engine tries.
func PrepWindow[T any](spec AtomSpec, prepFn PrepFunc[T], applyFn PrepWindowFunc[T]) Pattern[T] {
	return &prepWindowPattern[T]{spec: spec, q: spec.quant(), prepFn: prepFn, applyFn: applyFn}
}

func (p *prepWindowPattern[T]) name() string           { return p.spec.Name }
func (p *prepWindowPattern[T]) children() []Pattern[T] { return nil }

func (p *prepWindowPattern[T]) prep(mi *MatchInfo[T]) (ok bool, err error) {
	min, max, err := p.q.resolve(mi.DataLength())
	if err != nil {
		return false, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = callbackError(p.spec.Name, r)
		}
	}()
	scratch, resolvedOK, prepErr := p.prepFn(mi.NamedData(p.spec.SubsetName))
	if prepErr != nil {
		return false, prepErr
	}
	if !resolvedOK {
		return false, nil
	}
	mi.shared.setScratch(p, min, max, scratch)
	return true, nil
}

func (p *prepWindowPattern[T]) apply(mi *MatchInfo[T]) (result MatchResult, err error) {
	min, max := mi.bounds(p)
	length := mi.Length
	if length > max {
		length = max
	}
	if length < min {
		return NoMatch(), nil
	}
	right := mi.Left + length - 1
	scratch := mi.scratch(p)

	defer func() {
		if r := recover(); r != nil {
			err = callbackError(p.spec.Name, r)
		}
	}()
	result = p.applyFn(mi.NamedData(p.spec.SubsetName), mi.Left, right, scratch)
	if !validateResult(result, length) {
		return MatchResult{}, contractViolation("prep-window atom", p.spec.Name, 0, "<callback>", rawN(result), length)
	}
	return result, nil
}

func (p *prepWindowPattern[T]) cleanup(mi *MatchInfo[T]) { mi.shared.dropScratch(p) }

func (p *prepWindowPattern[T]) String() string {
	return fmt.Sprintf("prepwindow<%s..%s>%s", p.spec.MinQuant, p.spec.MaxQuant, nameSuffix(p.spec.Name))
}

// --- Elem: the user-callback, single-element atom -----------------------

type elemPattern[T any] struct {
	spec AtomSpec
	pred func(T) bool
}

// Elem builds an atom that always consumes exactly one element,
// succeeding iff pred accepts it - the "single-element" callback flavor
// named in spec.md §2. It is sugar for ElemIn with an unnamed subset
// (the primary container).
func Elem[T any](name string, pred func(T) bool) Pattern[T] {
	return ElemIn[T](AtomSpec{Name: name}, pred)
}

// ElemIn is Elem generalized with a full AtomSpec, so pred can be bound
// to one of MatchKeyed's named sub-containers via spec.SubsetName (the
// sub-data match variant spec.md §6 describes: "dispatches each child to
// the container keyed by its subset_name").
func ElemIn[T any](spec AtomSpec, pred func(T) bool) Pattern[T] {
	return &elemPattern[T]{spec: spec, pred: pred}
}

func (p *elemPattern[T]) name() string           { return p.spec.Name }
func (p *elemPattern[T]) children() []Pattern[T] { return nil }

func (p *elemPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	mi.shared.setScratch(p, 1, 1, nil)
	return true, nil
}

func (p *elemPattern[T]) apply(mi *MatchInfo[T]) (result MatchResult, err error) {
	if mi.Length < 1 {
		return NoMatch(), nil
	}
	el := mi.NamedData(p.spec.SubsetName).At(mi.Left)

	defer func() {
		if r := recover(); r != nil {
			err = callbackError(p.spec.Name, r)
		}
	}()
	if p.pred(el) {
		return Consumed(1), nil
	}
	return NoMatch(), nil
}

func (p *elemPattern[T]) cleanup(mi *MatchInfo[T]) { mi.shared.dropScratch(p) }

func (p *elemPattern[T]) String() string {
	return fmt.Sprintf("elem%s", nameSuffix(p.spec.Name))
}

// --- Pos: the zero-width positional assertion ---------------------------

type posPattern[T any] struct {
	name_              string
	posExpr            string
	fromExpr, toExpr   string
	isRange            bool
}

// Pos builds a zero-width assertion that succeeds iff the current left
// offset satisfies the position expression posExpr (spec.md §4.1/§4.8).
func Pos[T any](name string, posExpr string) Pattern[T] {
	return &posPattern[T]{name_: name, posExpr: posExpr}
}

// PosRange builds a zero-width assertion that succeeds iff the current
// left offset falls within [from,to] (both position expressions).
func PosRange[T any](name string, fromExpr, toExpr string) Pattern[T] {
	return &posPattern[T]{name_: name, fromExpr: fromExpr, toExpr: toExpr, isRange: true}
}

// Begin is sugar for position = 0 (spec.md §4.8).
func Begin[T any]() Pattern[T] { return Pos[T]("", "0") }

// End is sugar for position = data_length (spec.md §4.8).
func End[T any]() Pattern[T] { return Pos[T]("", "100%") }

func (p *posPattern[T]) name() string           { return p.name_ }
func (p *posPattern[T]) children() []Pattern[T] { return nil }

func (p *posPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	length := mi.DataLength()
	if p.isRange {
		from, err := ParsePosition(length, p.fromExpr)
		if err != nil {
			return false, err
		}
		to, err := ParsePosition(length, p.toExpr)
		if err != nil {
			return false, err
		}
		mi.shared.setScratch(p, 0, 0, [2]int{from, to})
		return true, nil
	}
	pos, err := ParsePosition(length, p.posExpr)
	if err != nil {
		return false, err
	}
	mi.shared.setScratch(p, 0, 0, pos)
	return true, nil
}

func (p *posPattern[T]) apply(mi *MatchInfo[T]) (MatchResult, error) {
	extra := mi.scratch(p)
	var ok bool
	if p.isRange {
		rng := extra.([2]int)
		ok = mi.Left >= rng[0] && mi.Left <= rng[1]
	} else {
		ok = mi.Left == extra.(int)
	}
	if ok {
		return ZeroWidth(), nil
	}
	return NoMatch(), nil
}

func (p *posPattern[T]) cleanup(mi *MatchInfo[T]) { mi.shared.dropScratch(p) }

func (p *posPattern[T]) String() string {
	if p.isRange {
		return fmt.Sprintf("pos[%s,%s]%s", p.fromExpr, p.toExpr, nameSuffix(p.name_))
	}
	return fmt.Sprintf("pos(%s)%s", p.posExpr, nameSuffix(p.name_))
}

// --- Sub: the zero-width subroutine assertion ---------------------------

// SubFunc is a user callback evaluated with no element consumption; it
// returns true for zero-width success. It may itself invoke Match on
// another pattern instance (or even this same instance) against mi's
// data or a sub-slice of it - the engine's re-entrancy guarantee
// (spec.md §5) makes this safe.
type SubFunc[T any] func(mi *MatchInfo[T]) (bool, error)

type subPattern[T any] struct {
	name_ string
	fn    SubFunc[T]
}

// Sub builds a zero-width assertion whose success is decided entirely by
// a user callback, the "subroutine" flavor named in spec.md §4.8.
func Sub[T any](name string, fn SubFunc[T]) Pattern[T] {
	return &subPattern[T]{name_: name, fn: fn}
}

func (p *subPattern[T]) name() string           { return p.name_ }
func (p *subPattern[T]) children() []Pattern[T] { return nil }

func (p *subPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	mi.shared.setScratch(p, 0, 0, nil)
	return true, nil
}

func (p *subPattern[T]) apply(mi *MatchInfo[T]) (result MatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = callbackError(p.name_, r)
		}
	}()
	ok, cbErr := p.fn(mi)
	if cbErr != nil {
		return MatchResult{}, cbErr
	}
	if ok {
		return ZeroWidth(), nil
	}
	return NoMatch(), nil
}

func (p *subPattern[T]) cleanup(mi *MatchInfo[T]) { mi.shared.dropScratch(p) }

func (p *subPattern[T]) String() string {
	return fmt.Sprintf("sub%s", nameSuffix(p.name_))
}

// --- shared helpers ------------------------------------------------------

func nameSuffix(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("{%s}", name)
}

func rawN(r MatchResult) int {
	switch r.kind {
	case KindConsumed:
		return r.n
	case KindBackoff:
		return -r.n
	default:
		return 0
	}
}
