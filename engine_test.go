package scrooge

import "testing"

func TestMatchDynamicSlice(t *testing.T) {
	outcome, err := MatchDynamic[int]([]int{1, 2, 3}, Any[int](AtomSpec{}), Config{})
	if err != nil {
		t.Fatalf("UNEXPECTED ERROR: %v", err)
	}
	if outcome == nil || outcome.Length != 3 {
		t.Fatalf("expected a full-length match, got %+v", outcome)
	}
}

func TestMatchDynamicArray(t *testing.T) {
	outcome, err := MatchDynamic[int]([3]int{1, 2, 3}, Any[int](AtomSpec{}), Config{})
	if err != nil {
		t.Fatalf("UNEXPECTED ERROR: %v", err)
	}
	if outcome == nil || outcome.Length != 3 {
		t.Fatalf("expected a full-length match over the array, got %+v", outcome)
	}
}

func TestMatchDynamicMap(t *testing.T) {
	// Any never calls Sequence.At, so it is safe to run against a
	// MapSequence, whose At panics (length.go).
	outcome, err := MatchDynamic[int](map[string]int{"length": 3}, Any[int](AtomSpec{}), Config{})
	if err != nil {
		t.Fatalf("UNEXPECTED ERROR: %v", err)
	}
	if outcome == nil || outcome.Length != 3 {
		t.Fatalf("expected a full-length match over the map's declared length, got %+v", outcome)
	}
}

func TestMatchDynamicRejectsUnadaptableType(t *testing.T) {
	if _, err := MatchDynamic[int](42, Any[int](AtomSpec{}), Config{}); err == nil {
		t.Errorf("expected an error matching a plain int, which has no length adapter")
	}
}

func TestMatchDynamicPassesThroughExistingSequence(t *testing.T) {
	outcome, err := MatchDynamic[int](SliceSequence[int]{1, 2}, Any[int](AtomSpec{}), Config{})
	if err != nil {
		t.Fatalf("UNEXPECTED ERROR: %v", err)
	}
	if outcome == nil || outcome.Length != 2 {
		t.Fatalf("expected a full-length match, got %+v", outcome)
	}
}

func TestMatchKeyedDispatchesBySubsetName(t *testing.T) {
	prices := SliceSequence[int]{10, 20, 30}
	volumes := SliceSequence[int]{1, 2, 3}

	highPrice := ElemIn[int](AtomSpec{Name: "price", SubsetName: "prices"}, func(v int) bool { return v >= 20 })
	lowVolume := ElemIn[int](AtomSpec{Name: "volume", SubsetName: "volumes"}, func(v int) bool { return v <= 2 })
	both := And[int](GroupSpec{}, highPrice, lowVolume)

	outcome, err := MatchKeyed[int](prices, map[string]Sequence[int]{
		"prices":  prices,
		"volumes": volumes,
	}, both, Config{})
	if err != nil {
		t.Fatalf("UNEXPECTED ERROR: %v", err)
	}
	if outcome == nil || outcome.Left != 1 || outcome.Length != 1 {
		t.Fatalf("expected a match at offset 1 (price=20, volume=2), got %+v", outcome)
	}
}

func TestMatchKeyedRejectsMismatchedLength(t *testing.T) {
	primary := SliceSequence[int]{1, 2, 3}
	short := SliceSequence[int]{1, 2}

	_, err := MatchKeyed[int](primary, map[string]Sequence[int]{"short": short}, Any[int](AtomSpec{}), Config{})
	if err == nil {
		t.Errorf("expected an error for a sub-data container whose length does not match the primary")
	}
}

func TestMatchKeyedFallsBackToPrimaryForUnnamedAtoms(t *testing.T) {
	primary := SliceSequence[int]{1, 2, 3}
	other := SliceSequence[int]{9, 9, 9}

	plain := Elem[int]("p", func(v int) bool { return v == 1 })
	outcome, err := MatchKeyed[int](primary, map[string]Sequence[int]{"other": other}, plain, Config{})
	if err != nil {
		t.Fatalf("UNEXPECTED ERROR: %v", err)
	}
	if outcome == nil || outcome.Left != 0 {
		t.Fatalf("expected an atom with no SubsetName to read the primary container, got %+v", outcome)
	}
}
