package model

import (
	"fmt"
	"strconv"
	"strings"
)

// PeriodKind selects how events are filtered by period.
type PeriodKind int

const (
	PeriodAll PeriodKind = iota
	PeriodSingle
	PeriodSecondHalf // every period after the first
)

// PeriodFilter is an explicit period selection.
type PeriodFilter struct {
	Kind   PeriodKind
	Period int // used when Kind == PeriodSingle
}

func AllPeriods() PeriodFilter { return PeriodFilter{Kind: PeriodAll} }
func SinglePeriod(p int) PeriodFilter { return PeriodFilter{Kind: PeriodSingle, Period: p} }
func SecondHalfPeriods() PeriodFilter { return PeriodFilter{Kind: PeriodSecondHalf} }

// Match reports whether an event in the given period passes the filter.
func (f PeriodFilter) Match(period int) bool {
	switch f.Kind {
	case PeriodSingle:
		return period == f.Period
	case PeriodSecondHalf:
		return period > 1
	default:
		return true
	}
}

func (f PeriodFilter) String() string {
	switch f.Kind {
	case PeriodSingle:
		return strconv.Itoa(f.Period)
	case PeriodSecondHalf:
		return "2h"
	default:
		return "all"
	}
}

func (f PeriodFilter) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *PeriodFilter) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriodFilter(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParsePeriodFilter accepts "all", a period number, or "2h"/"second-half".
func ParsePeriodFilter(s string) (PeriodFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todos":
		return AllPeriods(), nil
	case "2h", "second-half", "segunda", "2ª parte":
		return SecondHalfPeriods(), nil
	}
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 {
		return PeriodFilter{}, fmt.Errorf("invalid period %q: want all, 2h or a period number", s)
	}
	return SinglePeriod(p), nil
}

// TimeRange is the display window of a period in match minutes.
type TimeRange struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Synthetic bool    `json:"synthetic,omitempty"` // no significant events, window was fabricated
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%.0f' - %.0f'", r.Start, r.End)
}

// PeriodRange pairs a period with its derived range.
type PeriodRange struct {
	Period int `json:"period"`
	TimeRange
}

// TimeRanges holds the derived ranges for a match, ordered by period.
type TimeRanges struct {
	Periods    []PeriodRange `json:"periods"`
	SecondHalf *TimeRange    `json:"second_half,omitempty"`
}

// Period returns the range for one period.
func (t TimeRanges) Period(p int) (TimeRange, bool) {
	for _, pr := range t.Periods {
		if pr.Period == p {
			return pr.TimeRange, true
		}
	}
	return TimeRange{}, false
}

// Lookup returns the range matching a filter. PeriodAll spans first to last period.
func (t TimeRanges) Lookup(f PeriodFilter) (TimeRange, bool) {
	switch f.Kind {
	case PeriodSingle:
		return t.Period(f.Period)
	case PeriodSecondHalf:
		if t.SecondHalf == nil {
			return TimeRange{}, false
		}
		return *t.SecondHalf, true
	default:
		if len(t.Periods) == 0 {
			return TimeRange{}, false
		}
		return TimeRange{Start: t.Periods[0].Start, End: t.Periods[len(t.Periods)-1].End}, true
	}
}

// Label is the human display string for a filter, e.g. "1' - 45'".
func (t TimeRanges) Label(f PeriodFilter) string {
	r, ok := t.Lookup(f)
	if !ok {
		return ""
	}
	return r.String()
}
