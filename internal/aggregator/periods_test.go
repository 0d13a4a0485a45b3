package aggregator

import (
	"testing"

	"github.com/pable/go-match-metrics/internal/model"
)

func TestTimeRanges_SinglePeriod(t *testing.T) {
	var events []model.Event
	for m := 1; m <= 45; m += 2 {
		events = append(events, atMinute(1, float64(m)))
	}
	tr := TimeRanges(events)
	if len(tr.Periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(tr.Periods))
	}
	r := tr.Periods[0]
	if r.Period != 1 || r.Start != 1 || r.End != 45 || r.Synthetic {
		t.Errorf("expected {1: 1-45}, got %+v", r)
	}
	if tr.SecondHalf != nil {
		t.Errorf("expected no second-half entry, got %+v", *tr.SecondHalf)
	}
}

func TestTimeRanges_ZeroMinutesIgnored(t *testing.T) {
	events := []model.Event{atMinute(1, 0), atMinute(1, 0), atMinute(1, nan)}
	tr := TimeRanges(events)
	r, ok := tr.Period(1)
	if !ok {
		t.Fatal("period 1 should be observed")
	}
	if r.Start != 0 || r.End != 45 || !r.Synthetic {
		t.Errorf("expected fallback [0,45], got %+v", r)
	}
}

func TestTimeRanges_LaterPeriods(t *testing.T) {
	events := []model.Event{
		atMinute(1, 2), atMinute(1, 44),
		atMinute(2, 50), atMinute(2, 88),
		atMinute(3, 0), // no significant events: synthetic window
	}
	tr := TimeRanges(events)
	p2, _ := tr.Period(2)
	if p2.Start != 45 || p2.End != 88 {
		t.Errorf("period 2: expected 45-88, got %+v", p2)
	}
	p3, _ := tr.Period(3)
	if p3.Start != 89 || p3.End != 99 || !p3.Synthetic {
		t.Errorf("period 3: expected synthetic 89-99, got %+v", p3)
	}
	if tr.SecondHalf == nil {
		t.Fatal("expected second-half entry")
	}
	if tr.SecondHalf.Start != 45 || tr.SecondHalf.End != 99 {
		t.Errorf("second half: expected 45-99, got %+v", *tr.SecondHalf)
	}
	if got := tr.Label(model.SecondHalfPeriods()); got != "45' - 99'" {
		t.Errorf("label: got %q", got)
	}
}

func TestTimeRanges_Monotonic(t *testing.T) {
	// period 2 clock restarts at 1
	events := []model.Event{
		atMinute(1, 5), atMinute(1, 40),
		atMinute(2, 1), atMinute(2, 30),
		atMinute(4, 12),
	}
	tr := TimeRanges(events)
	prev := model.TimeRange{Start: -1, End: -1}
	for _, pr := range tr.Periods {
		if pr.Start < prev.Start || pr.End < prev.End {
			t.Errorf("period %d range %+v decreases after %+v", pr.Period, pr.TimeRange, prev)
		}
		if pr.Start > pr.End {
			t.Errorf("period %d start after end: %+v", pr.Period, pr.TimeRange)
		}
		if prev.End >= 0 && pr.Start <= prev.End {
			t.Errorf("period %d starts at %.0f, not after %.0f", pr.Period, pr.Start, prev.End)
		}
		prev = pr.TimeRange
	}
}

func TestTimeRanges_NoFirstPeriod(t *testing.T) {
	tr := TimeRanges([]model.Event{atMinute(2, 0)})
	p2, ok := tr.Period(2)
	if !ok {
		t.Fatal("period 2 should be observed")
	}
	if p2.Start != 46 || p2.End != 56 {
		t.Errorf("expected 46-56 after default first-period end, got %+v", p2)
	}
	if tr.SecondHalf == nil || tr.SecondHalf.Start != 46 {
		t.Errorf("unexpected second half %+v", tr.SecondHalf)
	}
}

func TestSubstitutes_Cutoff(t *testing.T) {
	sub := func(minute float64, in model.PlayerID, team string) model.Event {
		return model.Event{Team: team, Period: 2, Minute: minute, Code: model.CodeSubstitution,
			Player: "4. Out", Secondary: in}
	}
	events := []model.Event{
		atMinute(1, 3), atMinute(1, 40),
		sub(39, "14. Early", model.DefaultTeam),
		sub(40, "15. OnTime", model.DefaultTeam),
		sub(60, "16. Late", model.DefaultTeam),
		sub(60, "17. Rival", "Levante"),
		sub(70, "", model.DefaultTeam),
	}
	subs := Substitutes(events, model.DefaultTeam, TimeRanges(events))
	if len(subs) != 2 || !subs["15. OnTime"] || !subs["16. Late"] {
		t.Errorf("expected OnTime and Late only, got %v", subs)
	}
}

func TestPeriodFilter(t *testing.T) {
	cases := []struct {
		in     string
		period int
		want   bool
	}{
		{"all", 3, true},
		{"1", 1, true},
		{"1", 2, false},
		{"2h", 1, false},
		{"2h", 2, true},
		{"2h", 3, true},
	}
	for _, c := range cases {
		f, err := model.ParsePeriodFilter(c.in)
		if err != nil {
			t.Fatalf("ParsePeriodFilter(%q): %v", c.in, err)
		}
		if got := f.Match(c.period); got != c.want {
			t.Errorf("%q.Match(%d) = %v, want %v", c.in, c.period, got, c.want)
		}
	}
	if _, err := model.ParsePeriodFilter("zero"); err == nil {
		t.Error("expected error for invalid filter")
	}
}
