package scrooge

import "github.com/google/uuid"

// MatchOutcome is the result of a successful top-level Match call,
// bundling everything spec.md §4.2 says the driver must hand back: the
// winning window, the root's own positive-match children, and the full
// capture store accumulated along the way.
type MatchOutcome[T any] struct {
	Left, Right int
	Length      int

	PositiveMatches []*MatchInfo[T]
	Captures        *CaptureStore[T]
	MatchID         uuid.UUID
}

// Match runs the four-phase lifecycle against data: it resolves the
// container length, preps the pattern tree once, then scans left offsets
// from 0 upward looking for the leftmost position at which root succeeds,
// applying the greedy backoff protocol at each one. A nil *MatchOutcome
// with a nil error means no match was found anywhere in data; a non-nil
// error means a hard failure (bad quantifier, contract violation, a
// panicking callback) aborted the scan.
func Match[T any](data Sequence[T], root Pattern[T], cfg Config) (*MatchOutcome[T], error) {
	return matchCore[T](data, nil, root, cfg)
}

// MatchKeyed is spec.md §6's sub-data match variant: "pattern.match(name1
// => data1, name2 => data2, …) (for sub-data variants) dispatches each
// child to the container keyed by its subset_name". primary supplies the
// container length the engine driver scans over and is what every atom
// built without a SubsetName (the common case) reads; atoms built with
// AtomSpec.SubsetName set instead read the matching entry of datas.
//
// Every named container must have exactly primary's length - apply
// windows are computed once and shared across all of them, so a
// mismatched length would silently read past one container's bounds
// while still inside another's; this is reported as a type error instead.
func MatchKeyed[T any](primary Sequence[T], datas map[string]Sequence[T], root Pattern[T], cfg Config) (*MatchOutcome[T], error) {
	primaryLen := primary.Len()
	for name, d := range datas {
		if d.Len() != primaryLen {
			return nil, typeErrorf("MatchKeyed: sub-data %q has length %d, primary container has length %d", name, d.Len(), primaryLen)
		}
	}
	return matchCore[T](primary, datas, root, cfg)
}

func matchCore[T any](data Sequence[T], namedData map[string]Sequence[T], root Pattern[T], cfg Config) (outcome *MatchOutcome[T], err error) {
	if root == nil {
		return nil, errNilPattern
	}
	if _, err := collectNames(root); err != nil {
		return nil, err
	}

	dataLength := data.Len()
	shared := &sharedState[T]{
		data:       data,
		dataLength: dataLength,
		cfg:        cfg,
		captures:   newCaptureStore[T](),
		matchID:    uuid.New(),
		namedData:  namedData,
	}
	seed := &MatchInfo[T]{shared: shared, Left: 0, Right: dataLength - 1, Length: dataLength}

	prepped, err := root.prep(seed)
	defer func() {
		if cleanupErr := recoverCleanup(func() { root.cleanup(seed) }); cleanupErr != nil && err == nil {
			outcome, err = nil, cleanupErr
		}
	}()
	if err != nil {
		return nil, err
	}
	if !prepped {
		return nil, nil
	}

	minSize, maxSize := seed.bounds(root)

	maxLeft := dataLength - minSize
	if cfg.MaxLeftScan > 0 && maxLeft > cfg.MaxLeftScan {
		maxLeft = cfg.MaxLeftScan
	}

	for left := 0; left <= maxLeft; left++ {
		right := left + maxSize - 1
		if right > dataLength-1 {
			right = dataLength - 1
		}
		minRight := left + minSize - 1

		for right >= minRight {
			mi := seed.window(left, right)
			res, err := root.apply(mi)
			if err != nil {
				return nil, err
			}
			if !validateResult(res, mi.Length) {
				return nil, contractViolation("match", root.name(), 0, root.name(), rawN(res), mi.Length)
			}
			switch res.Kind() {
			case KindConsumed, KindZeroWidth:
				return &MatchOutcome[T]{
					Left:            left,
					Right:           right,
					Length:          res.N(),
					PositiveMatches: mi.PositiveMatches,
					Captures:        shared.captures,
					MatchID:         shared.matchID,
				}, nil
			case KindBackoff:
				right -= res.BackoffDepth()
				continue
			case KindNoMatch:
			}
			break
		}
	}

	return nil, nil
}

// MatchNamed runs Match and, on success, flattens the capture store into
// a plain name -> match-infos map for callers that do not need the full
// MatchOutcome.
func MatchNamed[T any](data Sequence[T], root Pattern[T], cfg Config) (map[string][]*MatchInfo[T], bool, error) {
	outcome, err := Match(data, root, cfg)
	if err != nil {
		return nil, false, err
	}
	if outcome == nil {
		return nil, false, nil
	}
	result := make(map[string][]*MatchInfo[T], len(outcome.Captures.Names()))
	for _, name := range outcome.Captures.Names() {
		result[name] = outcome.Captures.List(name)
	}
	return result, true, nil
}

// MatchDynamic runs Match against any value the length registry can
// adapt: a Go slice (via SliceSequence), a fixed-size array (via
// NewArraySequence), or a string-keyed map (via NewMapSequence, which
// only supports zero-width/positional patterns since it has no natural
// element order). It is the sequence-domain analogue of the teacher's
// ability to match against differently-shaped inputs without the caller
// picking an adapter by hand.
func MatchDynamic[T any](data any, root Pattern[T], cfg Config) (*MatchOutcome[T], error) {
	switch v := data.(type) {
	case Sequence[T]:
		return Match[T](v, root, cfg)
	case []T:
		return Match[T](SliceSequence[T](v), root, cfg)
	}

	if arr, err := NewArraySequence[T](data); err == nil {
		return Match[T](arr, root, cfg)
	}
	m, err := NewMapSequence[T](data)
	if err != nil {
		return nil, typeErrorf("MatchDynamic: %T is not a recognized sequence, array, or associative map", data)
	}
	return Match[T](m, root, cfg)
}
