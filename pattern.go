package scrooge

import "github.com/google/uuid"

// Config controls limits and feature toggles for a Match call, the
// sequence-domain analogue of the teacher's peg.Config.
type Config struct {
	// MaxLeftScan is the highest left offset the engine driver will
	// try before giving up, zero or negative for unbounded.
	MaxLeftScan int

	// MaxRepeat bounds how many iterations Repeat will attempt
	// regardless of its own max_rep, zero or negative for unbounded.
	MaxRepeat int

	// DisableCaptures turns off named-capture bookkeeping entirely.
	DisableCaptures bool
}

var defaultConfig = Config{
	MaxLeftScan: 0,
	MaxRepeat:   100000,
}

// Pattern is the closed set of pattern-tree node kinds (DESIGN NOTES §9
// prefers a sum type; in Go that is an interface implemented only by
// this package's unexported node structs). Every node participates in
// the four-phase lifecycle: construction (already done once the Go value
// exists), prep, apply, cleanup.
type Pattern[T any] interface {
	// name is the capture name bound at construction, or "" if none.
	name() string

	// children lists direct sub-patterns, for the name registry walk and
	// for generic tree algorithms; atoms return nil.
	children() []Pattern[T]

	// prep performs data-dependent preparation once per container,
	// storing its own bounds/scratch into mi.shared. Returns false if no
	// match is possible at all (a soft failure, not an error).
	prep(mi *MatchInfo[T]) (bool, error)

	// apply is invoked repeatedly at different windows of the same
	// container, after a successful prep.
	apply(mi *MatchInfo[T]) (MatchResult, error)

	// cleanup releases prep-time resources; called for every prepped
	// node regardless of whether matching ultimately succeeded.
	cleanup(mi *MatchInfo[T])

	String() string
}

// nodeScratch is the per-node, per-container prep record: the bounds
// established by prep, plus whatever arbitrary data the node needs to
// remember (compiled closures, parsed intervals, running statistics).
// It never lives on the node itself - see SPEC_FULL.md §5 -
// it is reached only through MatchInfo.shared, so the same node can be
// safely re-entered mid-match.
type nodeScratch struct {
	min, max int
	extra    any
}

// sharedState is the state common to every MatchInfo produced during one
// top-level Match call: the container, its cached length, the capture
// store, and the prep scratch table. The teacher's equivalent is the
// fields of *context that are not part of a single stack frame.
type sharedState[T any] struct {
	data       Sequence[T]
	dataLength int
	cfg        Config
	captures   *CaptureStore[T]
	scratch    map[Pattern[T]]*nodeScratch
	matchID    uuid.UUID

	// namedData holds the sub-data containers a MatchKeyed call registered,
	// keyed by subset_name (spec.md §6's "pattern.match(name1 => data1,
	// name2 => data2, …)" sub-data match variant). Nil for a plain Match
	// call, where every atom reads the single primary container instead.
	namedData map[string]Sequence[T]
}

func (s *sharedState[T]) setScratch(p Pattern[T], min, max int, extra any) {
	if s.scratch == nil {
		s.scratch = make(map[Pattern[T]]*nodeScratch)
	}
	s.scratch[p] = &nodeScratch{min: min, max: max, extra: extra}
}

func (s *sharedState[T]) getScratch(p Pattern[T]) *nodeScratch {
	return s.scratch[p]
}

func (s *sharedState[T]) dropScratch(p Pattern[T]) {
	delete(s.scratch, p)
}

// MatchInfo is the transient, per-application match-info bag described in
// spec.md §3: one instance per application of a node to a particular
// window. All mutable state used during matching lives here (or in the
// shared scratch table reachable from here), never on the Pattern node
// itself, which is what makes mid-match re-entry safe (spec.md §5).
type MatchInfo[T any] struct {
	shared *sharedState[T]

	Left, Right int
	Length      int

	// PositiveMatches lists, once this node's apply has returned success
	// at this window, the child match-infos that contributed - spec.md
	// §3's invariant on positive_matches shape.
	PositiveMatches []*MatchInfo[T]
}

// Data returns the container being matched.
func (mi *MatchInfo[T]) Data() Sequence[T] { return mi.shared.data }

// DataLength returns the cached container length.
func (mi *MatchInfo[T]) DataLength() int { return mi.shared.dataLength }

// NamedData returns the sub-data container MatchKeyed registered under
// subsetName, falling back to the single primary container Data() returns
// when subsetName is empty or was never registered (which is always the
// case for a plain Match call) - spec.md §6's Matching entry point:
// "pattern.match(name1=>data1, name2=>data2, …) (for sub-data variants)
// dispatches each child to the container keyed by its subset_name".
func (mi *MatchInfo[T]) NamedData(subsetName string) Sequence[T] {
	if subsetName == "" {
		return mi.shared.data
	}
	if d, ok := mi.shared.namedData[subsetName]; ok {
		return d
	}
	return mi.shared.data
}

// Captures returns the top-level capture store for this match.
func (mi *MatchInfo[T]) Captures() *CaptureStore[T] { return mi.shared.captures }

// MatchID returns the uuid identifying this top-level Match call, so that
// captures produced by re-entrant sub-matches can be told apart by a
// caller aggregating several Match results (see SPEC_FULL.md §3).
func (mi *MatchInfo[T]) MatchID() uuid.UUID { return mi.shared.matchID }

// window builds a new transient MatchInfo sharing this one's container
// and scratch table, at a different [left,right] span. This is how
// groupers hand a constrained window down to a child without mutating
// anything on the child node itself.
func (mi *MatchInfo[T]) window(left, right int) *MatchInfo[T] {
	length := right - left + 1
	if length < 0 {
		length = 0
	}
	return &MatchInfo[T]{
		shared: mi.shared,
		Left:   left,
		Right:  right,
		Length: length,
	}
}

// bounds returns the [min,max] size bounds a prior prep call established
// for node p, as recorded in the shared scratch table.
func (mi *MatchInfo[T]) bounds(p Pattern[T]) (min, max int) {
	rec := mi.shared.getScratch(p)
	if rec == nil {
		return 0, 0
	}
	return rec.min, rec.max
}

// scratch returns the arbitrary prep-time payload node p stashed for
// itself, or nil if none.
func (mi *MatchInfo[T]) scratch(p Pattern[T]) any {
	rec := mi.shared.getScratch(p)
	if rec == nil {
		return nil
	}
	return rec.extra
}

// cleanupAll runs cleanup on every pattern in pats, collecting any panics
// recovered from an individual child's cleanup into a single combined
// error (spec.md §7's aggregation rule) rather than letting the first
// failure mask the rest. Panics because cleanup itself is void; callers
// that need the error (grouper cleanup methods) recover it at their own
// boundary and re-panic with the combined value for Match to convert.
func cleanupAll[T any](pats []Pattern[T], mi *MatchInfo[T]) {
	var errs []error
	for _, p := range pats {
		if err := recoverCleanup(func() { p.cleanup(mi) }); err != nil {
			errs = append(errs, err)
		}
	}
	if combined := combineCleanupErrors(errs); combined != nil {
		panic(combined)
	}
}

// collectNames walks the pattern tree, building a name -> node map and
// rejecting duplicate names bound to two distinct node identities (the
// same node appearing twice under its own name, through re-entry or
// explicit sharing, is fine - spec.md §4.2 "Name registry").
func collectNames[T any](root Pattern[T]) (map[string]Pattern[T], error) {
	names := make(map[string]Pattern[T])
	var walk func(p Pattern[T]) error
	walk = func(p Pattern[T]) error {
		if p == nil {
			return errNilPattern
		}
		if n := p.name(); n != "" {
			if existing, ok := names[n]; ok && existing != p {
				return errDuplicateCapture(n)
			}
			names[n] = p
		}
		for _, child := range p.children() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return names, nil
}
