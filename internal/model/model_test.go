package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseCode(t *testing.T) {
	if c, ok := ParseCode(" Tiros "); !ok || c != CodeShot {
		t.Errorf("Tiros must alias shots, got %v %v", c, ok)
	}
	if c, ok := ParseCode("Pase"); ok || c != CodeUnknown {
		t.Errorf("near-miss label must stay unknown, got %v %v", c, ok)
	}
	for _, c := range []Code{CodePass, CodeFoul, CodeShot, CodeRecovery, CodeSubstitution, CodeFindFacing, CodeFindDepth, CodeAttackBox} {
		if got, ok := ParseCode(c.String()); !ok || got != c {
			t.Errorf("ParseCode(%q) = %v, %v", c.String(), got, ok)
		}
	}
}

func TestParsePeriodFilter(t *testing.T) {
	cases := map[string]PeriodFilter{
		"":        AllPeriods(),
		"todos":   AllPeriods(),
		"2h":      SecondHalfPeriods(),
		"segunda": SecondHalfPeriods(),
		"3":       SinglePeriod(3),
	}
	for in, want := range cases {
		got, err := ParsePeriodFilter(in)
		if err != nil || got != want {
			t.Errorf("ParsePeriodFilter(%q) = %+v, %v", in, got, err)
		}
	}
	for _, bad := range []string{"0", "-1", "half"} {
		if _, err := ParsePeriodFilter(bad); err == nil {
			t.Errorf("ParsePeriodFilter(%q) should fail", bad)
		}
	}

	second := SecondHalfPeriods()
	if second.Match(1) || !second.Match(2) || !second.Match(3) {
		t.Error("second half must match every period after the first")
	}
}

func TestPlayerID(t *testing.T) {
	id := PlayerID("10. Pérez López")
	if id.Number() != "10" || id.Name() != "Pérez López" {
		t.Errorf("split: %q %q", id.Number(), id.Name())
	}
	bare := PlayerID("Pérez")
	if bare.Number() != "" || bare.Name() != "Pérez" {
		t.Errorf("bare id: %q %q", bare.Number(), bare.Name())
	}
}

func TestEventReceiverAndPoints(t *testing.T) {
	e := Event{StartX: 10, StartY: 20, EndX: math.NaN(), EndY: 5}
	if _, ok := e.Receiver(); ok {
		t.Error("missing secondary is not a receiver")
	}
	if !e.HasStart() || e.HasEnd() {
		t.Error("start present, end missing")
	}
}

func TestReportEnumsRoundTrip(t *testing.T) {
	in := MatchReport{
		Query: Query{Team: "Valencia", Period: SecondHalfPeriods()},
		Shots: &ShotMap{Shots: []ShotPoint{{Outcome: ShotOnTarget}}},
		SpecificPasses: []SpecificPasses{
			{Action: ActionAttackBoxPlus3},
		},
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out MatchReport
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Query.Period != SecondHalfPeriods() {
		t.Errorf("period: %+v", out.Query.Period)
	}
	if out.Shots.Shots[0].Outcome != ShotOnTarget {
		t.Errorf("outcome: %v", out.Shots.Shots[0].Outcome)
	}
	if out.SpecificPasses[0].Action != ActionAttackBoxPlus3 {
		t.Errorf("action: %v", out.SpecificPasses[0].Action)
	}
}
