package scrooge

import (
	"fmt"
	"strings"
)

// GroupSpec is the "keyed configuration" every grouper constructor
// accepts, per spec.md §6.
type GroupSpec struct {
	Name string
}

// --- Or: alternation, spec.md §4.4 ---------------------------------------

type orPattern[T any] struct {
	spec GroupSpec
	pats []Pattern[T]
}

type orExtra struct {
	ok []bool
}

// Or builds the alternation grouper: it searches children in declaration
// order and succeeds with the first one that matches.
func Or[T any](spec GroupSpec, pats ...Pattern[T]) Pattern[T] {
	return &orPattern[T]{spec: spec, pats: pats}
}

func (p *orPattern[T]) name() string           { return p.spec.Name }
func (p *orPattern[T]) children() []Pattern[T] { return p.pats }

func (p *orPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	ok := make([]bool, len(p.pats))
	min, max := -1, 0
	anyOk := false
	for i, child := range p.pats {
		succeeded, err := child.prep(mi)
		if err != nil {
			cleanupPrepared(p.pats, ok, mi)
			return false, err
		}
		ok[i] = succeeded
		if !succeeded {
			continue
		}
		anyOk = true
		cmin, cmax := mi.bounds(child)
		if min == -1 || cmin < min {
			min = cmin
		}
		if cmax > max {
			max = cmax
		}
	}
	if !anyOk {
		cleanupPrepared(p.pats, ok, mi)
		return false, nil
	}
	mi.shared.setScratch(p, min, max, orExtra{ok: ok})
	return true, nil
}

func (p *orPattern[T]) apply(mi *MatchInfo[T]) (MatchResult, error) {
	extra, _ := mi.scratch(p).(orExtra)

childLoop:
	for idx, child := range p.pats {
		if idx >= len(extra.ok) || !extra.ok[idx] {
			continue
		}
		cmin, cmax := mi.bounds(child)
		if cmin > mi.Length {
			continue
		}
		r := mi.Left + cmax - 1
		if r > mi.Right {
			r = mi.Right
		}
		minR := mi.Left + cmin - 1

		for r >= minR {
			childMI := mi.window(mi.Left, r)
			res, err := child.apply(childMI)
			if err != nil {
				return MatchResult{}, err
			}
			if !validateResult(res, childMI.Length) {
				return MatchResult{}, contractViolation("alternation", p.spec.Name, idx, child.name(), rawN(res), childMI.Length)
			}
			switch res.Kind() {
			case KindConsumed, KindZeroWidth:
				mi.PositiveMatches = []*MatchInfo[T]{childMI}
				pushNamed(child, childMI, mi)
				return res, nil
			case KindBackoff:
				r -= res.BackoffDepth()
				continue
			case KindNoMatch:
				continue childLoop
			}
		}
	}
	return NoMatch(), nil
}

func (p *orPattern[T]) cleanup(mi *MatchInfo[T]) {
	extra, _ := mi.scratch(p).(orExtra)
	cleanupPrepared(p.pats, extra.ok, mi)
	mi.shared.dropScratch(p)
}

func (p *orPattern[T]) String() string {
	strs := make([]string, len(p.pats))
	for i, c := range p.pats {
		strs[i] = fmt.Sprint(c)
	}
	return fmt.Sprintf("(%s)%s", strings.Join(strs, " | "), nameSuffix(p.spec.Name))
}

// --- And: conjunction, spec.md §4.5 ---------------------------------------

type andPattern[T any] struct {
	spec GroupSpec
	pats []Pattern[T]
}

// And builds the conjunction grouper: every child must match the
// identical [left,right] window, shrinking the shared window until all
// children agree or the window drops below the node's min_size.
func And[T any](spec GroupSpec, pats ...Pattern[T]) Pattern[T] {
	return &andPattern[T]{spec: spec, pats: pats}
}

func (p *andPattern[T]) name() string           { return p.spec.Name }
func (p *andPattern[T]) children() []Pattern[T] { return p.pats }

func (p *andPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	min, max := 0, -1
	for i, child := range p.pats {
		ok, err := child.prep(mi)
		if err != nil {
			cleanupUpTo(p.pats, i, mi)
			return false, err
		}
		if !ok {
			cleanupUpTo(p.pats, i, mi)
			return false, nil
		}
		cmin, cmax := mi.bounds(child)
		if cmin > min {
			min = cmin
		}
		if max == -1 || cmax < max {
			max = cmax
		}
	}
	if max < min {
		max = min
	}
	mi.shared.setScratch(p, min, max, nil)
	return true, nil
}

func (p *andPattern[T]) apply(mi *MatchInfo[T]) (MatchResult, error) {
	min, _ := mi.bounds(p)
	length := mi.Length
	left := mi.Left

	type contrib struct {
		child Pattern[T]
		mi    *MatchInfo[T]
	}

	for {
		if length < min {
			return NoMatch(), nil
		}
		right := left + length - 1

		var positive []contrib
		shrinkTo := -1
		backoffBy := 0
		failed := false

		for idx, child := range p.pats {
			childMI := mi.window(left, right)
			res, err := child.apply(childMI)
			if err != nil {
				return MatchResult{}, err
			}
			if !validateResult(res, childMI.Length) {
				return MatchResult{}, contractViolation("conjunction", p.spec.Name, idx, child.name(), rawN(res), childMI.Length)
			}
			switch res.Kind() {
			case KindConsumed:
				if res.N() == length {
					positive = append(positive, contrib{child, childMI})
					continue
				}
				shrinkTo = res.N()
			case KindZeroWidth:
				if length == 0 {
					positive = append(positive, contrib{child, childMI})
					continue
				}
				shrinkTo = 0
			case KindBackoff:
				backoffBy = res.BackoffDepth()
			case KindNoMatch:
				failed = true
			}
			break
		}

		if failed {
			return NoMatch(), nil
		}
		if shrinkTo >= 0 {
			length = shrinkTo
			continue
		}
		if backoffBy > 0 {
			length -= backoffBy
			continue
		}

		mi.PositiveMatches = make([]*MatchInfo[T], len(positive))
		for i, c := range positive {
			mi.PositiveMatches[i] = c.mi
			pushNamed(c.child, c.mi, mi)
		}
		if length == 0 {
			return ZeroWidth(), nil
		}
		return Consumed(length), nil
	}
}

func (p *andPattern[T]) cleanup(mi *MatchInfo[T]) {
	defer mi.shared.dropScratch(p)
	cleanupAll(p.pats, mi)
}

func (p *andPattern[T]) String() string {
	strs := make([]string, len(p.pats))
	for i, c := range p.pats {
		strs[i] = fmt.Sprint(c)
	}
	return fmt.Sprintf("(%s)%s", strings.Join(strs, " & "), nameSuffix(p.spec.Name))
}

// --- Seq: concatenation, spec.md §4.6 -------------------------------------

// seqFrame is one level of the recursive seq_apply algorithm from
// spec.md §4.6, represented explicitly rather than via Go call recursion
// (DESIGN NOTES §9: "rewrite as an explicit stack to avoid call-stack
// blow-up on long sequences").
type seqFrame[T any] struct {
	idx             int
	left, right     int
	size            int
	childMI         *MatchInfo[T]
	committed       bool
}

type seqPattern[T any] struct {
	spec GroupSpec
	pats []Pattern[T]
}

// Seq builds the concatenation grouper: children must match in order,
// each one greedily, with backoff when a later child needs room a
// greedier earlier child took.
func Seq[T any](spec GroupSpec, pats ...Pattern[T]) Pattern[T] {
	return &seqPattern[T]{spec: spec, pats: pats}
}

func (p *seqPattern[T]) name() string           { return p.spec.Name }
func (p *seqPattern[T]) children() []Pattern[T] { return p.pats }

func (p *seqPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	minSum, maxSum := 0, 0
	for i, child := range p.pats {
		ok, err := child.prep(mi)
		if err != nil {
			cleanupUpTo(p.pats, i, mi)
			return false, err
		}
		if !ok {
			cleanupUpTo(p.pats, i, mi)
			return false, nil
		}
		cmin, cmax := mi.bounds(child)
		minSum += cmin
		maxSum += cmax
	}
	mi.shared.setScratch(p, minSum, maxSum, nil)
	return true, nil
}

func (p *seqPattern[T]) cleanup(mi *MatchInfo[T]) {
	defer mi.shared.dropScratch(p)
	cleanupAll(p.pats, mi)
}

func (p *seqPattern[T]) suffixMins(mi *MatchInfo[T]) []int {
	n := len(p.pats)
	suf := make([]int, n+1)
	for i := n - 1; i >= 0; i-- {
		cmin, _ := mi.bounds(p.pats[i])
		suf[i] = suf[i+1] + cmin
	}
	return suf
}

func (p *seqPattern[T]) apply(mi *MatchInfo[T]) (MatchResult, error) {
	n := len(p.pats)
	if n == 0 {
		return ZeroWidth(), nil
	}
	if n == 1 {
		return p.applySingle(mi, p.pats[0], mi.Left, mi.Right, 0)
	}

	suf := p.suffixMins(mi)
	committedMI := make([]*MatchInfo[T], n)

	pushFrame := func(idx, left, right int) (*seqFrame[T], bool) {
		cmin, cmax := mi.bounds(p.pats[idx])
		avail := right - left + 1
		if avail < 0 {
			avail = 0
		}
		maxConsumable := avail - suf[idx+1]
		if maxConsumable > cmax {
			maxConsumable = cmax
		}
		if maxConsumable < cmin {
			return nil, false
		}
		return &seqFrame[T]{idx: idx, left: left, right: right, size: maxConsumable}, true
	}

	first, ok := pushFrame(0, mi.Left, mi.Right)
	if !ok {
		return NoMatch(), nil
	}
	stack := []*seqFrame[T]{first}

	const (
		sigNone = iota
		sigZero
		sigBackoff
		sigSuccess
	)
	signal := sigNone
	var backoffD, successTotal int

	cleanupFrame := func(f *seqFrame[T]) {
		if f.committed {
			popNamed(p.pats[f.idx], mi)
			f.committed = false
		}
	}

	for {
		if len(stack) == 0 {
			return NoMatch(), nil
		}
		top := stack[len(stack)-1]

		if signal != sigNone {
			switch signal {
			case sigZero:
				cleanupFrame(top)
				top.size--
				signal = sigNone
			case sigBackoff:
				top.right -= backoffD
				if nf, ok := pushFrame(top.idx+1, top.left+top.size, top.right); ok {
					stack = append(stack, nf)
				} else {
					cleanupFrame(top)
					top.size--
				}
				signal = sigNone
			case sigSuccess:
				total := top.size + successTotal
				if top.idx == 0 {
					mi.PositiveMatches = committedMI
					if total == 0 {
						return ZeroWidth(), nil
					}
					return Consumed(total), nil
				}
				stack = stack[:len(stack)-1]
				successTotal = total
			}
			continue
		}

		cmin, cmax := mi.bounds(p.pats[top.idx])

		if top.idx == n-1 {
			avail := top.right - top.left + 1
			if avail < 0 {
				avail = 0
			}
			size := clampInt(avail, cmin, cmax)
			if size < cmin {
				stack = stack[:len(stack)-1]
				signal = sigZero
				continue
			}
			childMI := mi.window(top.left, top.left+size-1)
			res, err := p.pats[top.idx].apply(childMI)
			if err != nil {
				return MatchResult{}, err
			}
			if !validateResult(res, childMI.Length) {
				return MatchResult{}, contractViolation("concatenation", p.spec.Name, top.idx, p.pats[top.idx].name(), rawN(res), childMI.Length)
			}
			switch res.Kind() {
			case KindNoMatch:
				stack = stack[:len(stack)-1]
				signal = sigZero
			case KindBackoff:
				stack = stack[:len(stack)-1]
				signal = sigBackoff
				backoffD = res.BackoffDepth()
			case KindConsumed, KindZeroWidth:
				pushNamed(p.pats[top.idx], childMI, mi)
				top.committed = true
				top.childMI = childMI
				committedMI[top.idx] = childMI
				stack = stack[:len(stack)-1]
				signal = sigSuccess
				successTotal = res.N()
			}
			continue
		}

		// interior frame
		if top.size < cmin {
			stack = stack[:len(stack)-1]
			signal = sigZero
			continue
		}
		childMI := mi.window(top.left, top.left+top.size-1)
		res, err := p.pats[top.idx].apply(childMI)
		if err != nil {
			return MatchResult{}, err
		}
		if !validateResult(res, childMI.Length) {
			return MatchResult{}, contractViolation("concatenation", p.spec.Name, top.idx, p.pats[top.idx].name(), rawN(res), childMI.Length)
		}
		switch res.Kind() {
		case KindNoMatch:
			stack = stack[:len(stack)-1]
			signal = sigZero
		case KindBackoff:
			top.size -= res.BackoffDepth()
		case KindConsumed, KindZeroWidth:
			top.size = res.N()
			top.childMI = childMI
			top.committed = true
			committedMI[top.idx] = childMI
			pushNamed(p.pats[top.idx], childMI, mi)
			if nf, ok := pushFrame(top.idx+1, top.left+top.size, top.right); ok {
				stack = append(stack, nf)
			} else {
				popNamed(p.pats[top.idx], mi)
				top.committed = false
				top.size--
			}
		}
	}
}

// applySingle handles spec.md §4.6's base case directly: clamp the
// window to the single remaining child's bounds and propagate its
// result unchanged.
func (p *seqPattern[T]) applySingle(mi *MatchInfo[T], child Pattern[T], left, right, idx int) (MatchResult, error) {
	cmin, cmax := mi.bounds(child)
	avail := right - left + 1
	if avail < 0 {
		avail = 0
	}
	size := clampInt(avail, cmin, cmax)
	if size < cmin {
		return NoMatch(), nil
	}
	childMI := mi.window(left, left+size-1)
	res, err := child.apply(childMI)
	if err != nil {
		return MatchResult{}, err
	}
	if !validateResult(res, childMI.Length) {
		return MatchResult{}, contractViolation("concatenation", p.spec.Name, idx, child.name(), rawN(res), childMI.Length)
	}
	if res.Ok() {
		mi.PositiveMatches = []*MatchInfo[T]{childMI}
		pushNamed(child, childMI, mi)
	}
	return res, nil
}

func (p *seqPattern[T]) String() string {
	strs := make([]string, len(p.pats))
	for i, c := range p.pats {
		strs[i] = fmt.Sprint(c)
	}
	return fmt.Sprintf("(%s)%s", strings.Join(strs, " "), nameSuffix(p.spec.Name))
}

// --- Repeat: repetition, spec.md §4.7 -------------------------------------

type repeatPattern[T any] struct {
	spec    GroupSpec
	repSpec RepeatSpec
	sub     Pattern[T]
}

// Repeat builds the repetition grouper: it repeats sub greedily between
// repSpec.Min and repSpec.Max times. The zero RepeatSpec (Min:0,Max:0)
// is not special-cased to "exactly once"; pass NewRepeatSpec/ParseRepeatSpec
// results, whose zero value means "never repeat" only if explicitly built
// that way.
func Repeat[T any](spec GroupSpec, repSpec RepeatSpec, sub Pattern[T]) Pattern[T] {
	return &repeatPattern[T]{spec: spec, repSpec: repSpec, sub: sub}
}

func (p *repeatPattern[T]) name() string           { return p.spec.Name }
func (p *repeatPattern[T]) children() []Pattern[T] { return []Pattern[T]{p.sub} }

func (p *repeatPattern[T]) prep(mi *MatchInfo[T]) (bool, error) {
	ok, err := p.sub.prep(mi)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	subMin, subMax := mi.bounds(p.sub)
	minSize := subMin * p.repSpec.Min

	var maxSize int
	switch {
	case subMax == 0:
		maxSize = 0
	case p.repSpec.Max == Unbounded:
		maxSize = mi.DataLength()
	default:
		maxSize = subMax * p.repSpec.Max
		if maxSize > mi.DataLength() {
			maxSize = mi.DataLength()
		}
	}
	if maxSize < minSize {
		maxSize = minSize
	}
	mi.shared.setScratch(p, minSize, maxSize, nil)
	return true, nil
}

func (p *repeatPattern[T]) cleanup(mi *MatchInfo[T]) {
	defer mi.shared.dropScratch(p)
	cleanupAll([]Pattern[T]{p.sub}, mi)
}

func (p *repeatPattern[T]) apply(mi *MatchInfo[T]) (MatchResult, error) {
	_, subMax := mi.bounds(p.sub)

	maxIter := p.repSpec.Max
	if maxIter == Unbounded {
		maxIter = mi.DataLength() + 1
	}
	if mi.shared.cfg.MaxRepeat > 0 && maxIter > mi.shared.cfg.MaxRepeat {
		maxIter = mi.shared.cfg.MaxRepeat
	}

	cursor := mi.Left
	remaining := mi.Length
	total := 0
	iterations := 0
	var positives []*MatchInfo[T]

	for iterations < maxIter {
		offered := remaining
		if subMax < offered {
			offered = subMax
		}
		if offered < 0 {
			offered = 0
		}
		right := cursor + offered - 1

		var res MatchResult
		var err error
		for {
			childMI := mi.window(cursor, right)
			res, err = p.sub.apply(childMI)
			if err != nil {
				return MatchResult{}, err
			}
			if !validateResult(res, childMI.Length) {
				return MatchResult{}, contractViolation("repetition", p.spec.Name, iterations, p.sub.name(), rawN(res), childMI.Length)
			}
			if res.Kind() == KindBackoff {
				right -= res.BackoffDepth()
				if right < cursor-1 {
					res = NoMatch()
					break
				}
				continue
			}
			break
		}

		if res.Kind() == KindNoMatch {
			break
		}

		n := res.N()
		childMI := mi.window(cursor, cursor+n-1)
		positives = append(positives, childMI)
		pushNamed(p.sub, childMI, mi)
		total += n
		cursor += n
		remaining -= n
		iterations++

		if n == 0 {
			// A zero-width sub-match would repeat forever without
			// consuming; collapse any still-needed minimum repeats into
			// this one iteration and stop.
			if iterations < p.repSpec.Min {
				iterations = p.repSpec.Min
			}
			break
		}
	}

	if iterations < p.repSpec.Min {
		for range positives {
			popNamed(p.sub, mi)
		}
		return NoMatch(), nil
	}

	mi.PositiveMatches = positives
	if total == 0 {
		return ZeroWidth(), nil
	}
	return Consumed(total), nil
}

func (p *repeatPattern[T]) String() string {
	return fmt.Sprintf("%s<%s>%s", p.sub, p.repSpec.String(), nameSuffix(p.spec.Name))
}

// --- shared grouper helpers -----------------------------------------------

func cleanupPrepared[T any](pats []Pattern[T], ok []bool, mi *MatchInfo[T]) {
	var prepared []Pattern[T]
	for i, p := range pats {
		if i < len(ok) && ok[i] {
			prepared = append(prepared, p)
		}
	}
	cleanupAll(prepared, mi)
}

func cleanupUpTo[T any](pats []Pattern[T], upto int, mi *MatchInfo[T]) {
	cleanupAll(pats[:upto], mi)
}
