package scrooge

import "testing"

type repeatSpecTestData struct {
	spec    string
	wantMin int
	wantMax int
	fail    bool
}

func runRepeatSpecTestData(t *testing.T, data repeatSpecTestData) {
	got, err := ParseRepeatSpec(data.spec)
	if err != nil {
		if data.fail {
			t.Logf("INFO: expected failure parsing %q: %v", data.spec, err)
		} else {
			t.Errorf("UNEXPECTED ERROR parsing %q: %v", data.spec, err)
		}
		return
	}
	if data.fail {
		t.Errorf("EXPECTED FAILURE BUT GOT (%d,%d) parsing %q", got.Min, got.Max, data.spec)
		return
	}
	if got.Min != data.wantMin || got.Max != data.wantMax {
		t.Errorf("ParseRepeatSpec(%q) => (%d,%d) != (%d,%d)", data.spec, got.Min, got.Max, data.wantMin, data.wantMax)
	}
}

func TestParseRepeatSpec(t *testing.T) {
	for _, data := range []repeatSpecTestData{
		{spec: "", wantMin: 0, wantMax: Unbounded},
		{spec: "*", wantMin: 0, wantMax: Unbounded},
		{spec: "+", wantMin: 1, wantMax: Unbounded},
		{spec: "3", wantMin: 3, wantMax: 3},
		{spec: "2,5", wantMin: 2, wantMax: 5},
		{spec: "2,", wantMin: 2, wantMax: Unbounded},
		{spec: ",5", wantMin: 0, wantMax: 5},
		{spec: "5,2", wantMin: 2, wantMax: 5},
		{spec: "-1", fail: true},
		{spec: "abc", fail: true},
		{spec: "1,2,3", fail: true},
	} {
		runRepeatSpecTestData(t, data)
	}
}

func TestRepeatSpecStringRoundTrip(t *testing.T) {
	for _, canonical := range []string{"*", "+", "3", "2,5"} {
		parsed, err := ParseRepeatSpec(canonical)
		if err != nil {
			t.Fatalf("ParseRepeatSpec(%q): %v", canonical, err)
		}
		if got := parsed.String(); got != canonical {
			t.Errorf("RepeatSpec.String() round-trip: %q => %q != %q", canonical, got, canonical)
		}
	}
}

func TestNewRepeatSpecRejectsNegative(t *testing.T) {
	if _, err := NewRepeatSpec(-1, 5); err == nil {
		t.Errorf("NewRepeatSpec(-1,5): expected error, got none")
	}
}
