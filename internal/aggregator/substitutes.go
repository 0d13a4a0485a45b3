package aggregator

import (
	"sort"

	"github.com/pable/go-match-metrics/internal/model"
)

// Substitutes returns the players brought on for team at or after the end of
// period 1. The set only affects labelling and never filters counts.
func Substitutes(events []model.Event, team string, ranges model.TimeRanges) map[model.PlayerID]bool {
	cutoff := firstPeriodEnd(ranges)
	subs := make(map[model.PlayerID]bool)
	for _, e := range events {
		if e.Code != model.CodeSubstitution || !sameTeam(e.Team, team) {
			continue
		}
		in, ok := e.Receiver()
		if !ok || !(e.Minute >= cutoff) {
			continue
		}
		subs[in] = true
	}
	return subs
}

func sortedPlayers(set map[model.PlayerID]bool) []model.PlayerID {
	out := make([]model.PlayerID, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
