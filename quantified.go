package scrooge

// quantified is the mixin described in spec.md §4 "Quantified": the base
// for atoms whose match length is bounded by [min_quant, max_quant],
// expressed as position strings (spec.md §4.1) resolved against the
// container's length during prep. The teacher's analogue is
// patternQualifierRange/patternQualifierAtLeast, which bound a *count of
// repetitions*; this mixin bounds an *element span* directly, which is
// what a single quantified atom (rather than a repetition grouper) needs.
type quantified struct {
	minQuantExpr, maxQuantExpr string
}

// newQuantified defaults an empty min to "0" and an empty max to "100%",
// i.e. the widest possible span.
func newQuantified(minQuant, maxQuant string) quantified {
	if minQuant == "" {
		minQuant = "0"
	}
	if maxQuant == "" {
		maxQuant = "100%"
	}
	return quantified{minQuantExpr: minQuant, maxQuantExpr: maxQuant}
}

// resolve computes this atom's [min,max] size bounds against a container
// of the given length, per spec.md §4.1's position grammar.
func (q quantified) resolve(dataLength int) (min, max int, err error) {
	min, err = ParsePosition(dataLength, q.minQuantExpr)
	if err != nil {
		return 0, 0, err
	}
	max, err = ParsePosition(dataLength, q.maxQuantExpr)
	if err != nil {
		return 0, 0, err
	}
	min = clampInt(min, 0, dataLength)
	max = clampInt(max, 0, dataLength)
	if max < min {
		max = min
	}
	return min, max, nil
}
