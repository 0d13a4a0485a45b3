package aggregator

import (
	"sort"

	"github.com/pable/go-match-metrics/internal/model"
)

const (
	defaultFirstPeriodEnd = 45.0
	syntheticWindow       = 10.0
)

// TimeRanges derives the display window of every observed period.
//
// Only events with minute > 0 are significant. Period 1 spans its significant
// minutes or [0, 45]. Each later period starts one minute after the previous
// end and runs to its own last significant minute, or for a fabricated
// 10-minute window when it has none. The second-half aggregate exists when any
// period after the first was observed.
func TimeRanges(events []model.Event) model.TimeRanges {
	type span struct {
		min, max float64
		seen     bool
	}
	spans := make(map[int]*span)
	for _, e := range events {
		if e.Period < 1 {
			continue
		}
		s, ok := spans[e.Period]
		if !ok {
			s = &span{}
			spans[e.Period] = s
		}
		if !(e.Minute > 0) {
			continue
		}
		if !s.seen {
			s.min, s.max, s.seen = e.Minute, e.Minute, true
			continue
		}
		if e.Minute < s.min {
			s.min = e.Minute
		}
		if e.Minute > s.max {
			s.max = e.Minute
		}
	}

	periods := make([]int, 0, len(spans))
	for p := range spans {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	var out model.TimeRanges
	prevEnd := defaultFirstPeriodEnd
	firstEnd := defaultFirstPeriodEnd
	hasLater := false
	for _, p := range periods {
		s := spans[p]
		var r model.TimeRange
		if p == 1 {
			if s.seen {
				r = model.TimeRange{Start: s.min, End: s.max}
			} else {
				r = model.TimeRange{Start: 0, End: defaultFirstPeriodEnd, Synthetic: true}
			}
			firstEnd = r.End
		} else {
			hasLater = true
			start := prevEnd + 1
			if s.seen {
				// ranges stay non-decreasing as the period index grows, even when the clock restarts
				end := s.max
				if end < start {
					end = start
				}
				r = model.TimeRange{Start: start, End: end}
			} else {
				r = model.TimeRange{Start: start, End: prevEnd + 1 + syntheticWindow, Synthetic: true}
			}
		}
		out.Periods = append(out.Periods, model.PeriodRange{Period: p, TimeRange: r})
		prevEnd = r.End
	}

	if hasLater {
		out.SecondHalf = &model.TimeRange{Start: firstEnd + 1, End: prevEnd}
	}
	return out
}

// firstPeriodEnd is the substitute cutoff: the end of period 1, or 45.
func firstPeriodEnd(ranges model.TimeRanges) float64 {
	if r, ok := ranges.Period(1); ok {
		return r.End
	}
	return defaultFirstPeriodEnd
}
