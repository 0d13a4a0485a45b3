package aggregator

import (
	"sort"
	"strings"

	"github.com/pable/go-match-metrics/internal/model"
)

// ClassifyShot buckets a shot by precedence: goal text, then on-target group,
// then off-target group.
func ClassifyShot(e model.Event) model.ShotOutcome {
	switch {
	case strings.Contains(e.Text, model.TextGoal):
		return model.ShotGoal
	case e.Group == model.GroupOnTarget || e.Group == model.GroupInside:
		return model.ShotOnTarget
	case e.Group == model.GroupOffTarget:
		return model.ShotOffTarget
	default:
		return model.ShotUnclassified
	}
}

// IsCorner reports whether e is a corner kick.
func IsCorner(e model.Event) bool {
	return e.Code == model.CodeGeneralStats && e.Group == model.GroupCorner
}

// CountPasses partitions the team's passes in the selected periods by
// whether a receiver was recorded.
func CountPasses(events []model.Event, q model.Query) model.PassSummary {
	var s model.PassSummary
	for _, e := range events {
		if e.Code != model.CodePass || !sameTeam(e.Team, q.Team) || !q.Period.Match(e.Period) {
			continue
		}
		if _, ok := e.Receiver(); ok {
			s.Completed++
		} else {
			s.Failed++
		}
	}
	return s
}

// CountCorners counts corners for the team and for every other side.
func CountCorners(events []model.Event, q model.Query) model.CornerCount {
	var c model.CornerCount
	for _, e := range events {
		if !IsCorner(e) || !q.Period.Match(e.Period) || e.Team == "" {
			continue
		}
		if sameTeam(e.Team, q.Team) {
			c.For++
		} else {
			c.Against++
		}
	}
	return c
}

// ShotMap classifies the team's shots. Shots without coordinates are counted
// but not plotted.
func ShotMap(m *model.Match, q model.Query) (*model.ShotMap, error) {
	if err := checkColumns(m, ViewShots); err != nil {
		return nil, err
	}
	sm := &model.ShotMap{Team: q.Team, Period: q.Period.String(), Shots: []model.ShotPoint{}}
	perPlayer := make(map[model.PlayerID]int)
	for _, e := range m.Events {
		if e.Code != model.CodeShot || !sameTeam(e.Team, q.Team) || !q.Period.Match(e.Period) {
			continue
		}
		outcome := ClassifyShot(e)
		sm.Summary.Add(outcome)
		if e.Player != "" {
			perPlayer[e.Player]++
		}
		pt := NormalizePoint(e.StartX, e.StartY)
		if !pt.Valid() {
			continue
		}
		sm.Shots = append(sm.Shots, model.ShotPoint{EventPoint: eventPoint(e, pt), Outcome: outcome})
	}
	sm.ByPlayer = rankCounts(perPlayer)
	return sm, nil
}

// FoulMap locates the team's fouls.
func FoulMap(m *model.Match, q model.Query) (*model.FoulMap, error) {
	if err := checkColumns(m, ViewFouls); err != nil {
		return nil, err
	}
	fm := &model.FoulMap{Team: q.Team, Period: q.Period.String(), Fouls: []model.EventPoint{}, ByPeriod: map[int]int{}}
	perPlayer := make(map[model.PlayerID]int)
	for _, e := range m.Events {
		if e.Code != model.CodeFoul || !sameTeam(e.Team, q.Team) || !q.Period.Match(e.Period) {
			continue
		}
		fm.Total++
		fm.ByPeriod[e.Period]++
		if e.Player != "" {
			perPlayer[e.Player]++
		}
		pt := NormalizePoint(e.StartX, e.StartY)
		if pt.Valid() {
			fm.Fouls = append(fm.Fouls, eventPoint(e, pt))
		}
	}
	fm.ByPlayer = rankCounts(perPlayer)
	return fm, nil
}

// RecoveryMap locates the team's ball recoveries and splits them by half.
func RecoveryMap(m *model.Match, q model.Query) (*model.RecoveryMap, error) {
	if err := checkColumns(m, ViewRecoveries); err != nil {
		return nil, err
	}
	rm := &model.RecoveryMap{Team: q.Team, Period: q.Period.String(), Recoveries: []model.RecoveryPoint{}, ByZone: map[model.Zone]int{}}
	perPlayer := make(map[model.PlayerID]int)
	for _, e := range m.Events {
		if e.Code != model.CodeRecovery || !sameTeam(e.Team, q.Team) || !q.Period.Match(e.Period) {
			continue
		}
		rm.Total++
		if e.Player != "" {
			perPlayer[e.Player]++
		}
		pt := NormalizePoint(e.StartX, e.StartY)
		if !pt.Valid() {
			continue
		}
		zone := ZoneOf(pt.X)
		rm.ByZone[zone]++
		rm.Recoveries = append(rm.Recoveries, model.RecoveryPoint{EventPoint: eventPoint(e, pt), Zone: zone})
	}
	rm.ByPlayer = rankCounts(perPlayer)
	return rm, nil
}

// SpecificPasses collects the arrows for every tagged attacking action.
func SpecificPasses(m *model.Match, q model.Query) ([]model.SpecificPasses, error) {
	if err := checkColumns(m, ViewSpecific); err != nil {
		return nil, err
	}
	out := make([]model.SpecificPasses, 0, len(model.SpecificActions))
	for _, a := range model.SpecificActions {
		sp := model.SpecificPasses{Action: a, Arrows: []model.Arrow{}}
		for _, e := range m.Events {
			if !matchesAction(e, a) || !sameTeam(e.Team, q.Team) || !q.Period.Match(e.Period) {
				continue
			}
			if e.Player == "" || !e.HasStart() || !e.HasEnd() {
				continue
			}
			sp.Arrows = append(sp.Arrows, model.Arrow{
				Player:   e.Player,
				Receiver: e.Secondary,
				Minute:   finite(e.Minute),
				Start:    NormalizePoint(e.StartX, e.StartY),
				End:      NormalizePoint(e.EndX, e.EndY),
			})
		}
		out = append(out, sp)
	}
	return out, nil
}

func matchesAction(e model.Event, a model.SpecificAction) bool {
	switch a {
	case model.ActionFindFacing:
		return e.Code == model.CodeFindFacing
	case model.ActionFindDepth:
		return e.Code == model.CodeFindDepth
	case model.ActionAttackBox:
		return e.Code == model.CodeAttackBox
	case model.ActionAttackBoxPlus3:
		return e.Code == model.CodeAttackBox && e.Group == model.GroupAttackBoxPlus3
	}
	return false
}

func eventPoint(e model.Event, pt model.Point) model.EventPoint {
	return model.EventPoint{Player: e.Player, Period: e.Period, Minute: finite(e.Minute), Point: pt}
}

// rankCounts orders players by count desc, then id.
func rankCounts(counts map[model.PlayerID]int) []model.PlayerCount {
	out := make([]model.PlayerCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, model.PlayerCount{Player: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// sameTeam compares team names ignoring case and surrounding space.
func sameTeam(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
