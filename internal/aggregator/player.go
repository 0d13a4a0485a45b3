package aggregator

import (
	"math"
	"strings"

	"github.com/pable/go-match-metrics/internal/model"
)

// CardOptions tunes a player card.
type CardOptions struct {
	Goalkeeper bool
}

var goalkeeperKeywords = []string{"portero", "goalkeeper", "arquero", "porter"}

// IsGoalkeeperPosition reports whether a roster position names a goalkeeper.
func IsGoalkeeperPosition(position string) bool {
	p := strings.ToLower(position)
	for _, k := range goalkeeperKeywords {
		if strings.Contains(p, k) {
			return true
		}
	}
	return false
}

// SamePlayer matches an event player against a user-supplied name, which may
// be the full "<number>. <name>" id or just the name.
func SamePlayer(id model.PlayerID, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || id == "" {
		return false
	}
	if string(id) == want {
		return true
	}
	return strings.EqualFold(id.Name(), model.PlayerID(want).Name())
}

// PlayerCard computes one player's card for a match.
func PlayerCard(m *model.Match, q model.Query, player string, opts CardOptions) model.PlayerCard {
	card := model.PlayerCard{Player: model.PlayerID(player), Matches: 1}
	var own []model.Event
	for _, e := range m.Events {
		if !SamePlayer(e.Player, player) || !q.Period.Match(e.Period) {
			continue
		}
		if card.Team == "" {
			card.Team = e.Team
			card.Player = e.Player
		}
		own = append(own, e)
	}

	card.Actions = len(own)
	for _, e := range own {
		switch e.Code {
		case model.CodePass:
			if _, ok := e.Receiver(); ok {
				card.Passes.Completed++
			} else {
				card.Passes.Failed++
			}
		case model.CodeShot:
			card.Shots.Add(ClassifyShot(e))
		case model.CodeFoul:
			card.Fouls++
		case model.CodeRecovery:
			card.Recoveries++
		case model.CodeFindDepth:
			card.FindDepth++
		case model.CodeFindFacing:
			card.FindFacing++
		case model.CodeAttackBox:
			card.AttackBox++
		}
	}

	if mins, ok := OfficialMinutes(m.MinutesPlayed, card.Player); ok {
		card.Minutes = mins
		card.OfficialMinutes = true
	} else {
		card.Minutes = EstimateMinutes(own)
	}

	if opts.Goalkeeper {
		team := card.Team
		if team == "" {
			team = q.Team
		}
		gk := goalkeeperCard(m.Events, model.Query{Team: team, Period: q.Period})
		card.Goalkeeper = &gk
	}
	card.Index = PerformanceIndex(card)
	return card
}

func goalkeeperCard(events []model.Event, q model.Query) model.GoalkeeperCard {
	var faced model.ShotSummary
	for _, e := range events {
		if e.Code != model.CodeShot || e.Team == "" || sameTeam(e.Team, q.Team) || !q.Period.Match(e.Period) {
			continue
		}
		faced.Add(ClassifyShot(e))
	}
	return newGoalkeeperCard(faced.Total, faced.Goals, faced.OnTarget)
}

// newGoalkeeperCard derives saves from shots that were on target without
// being goals.
func newGoalkeeperCard(shotsFaced, goals, saves int) model.GoalkeeperCard {
	gk := model.GoalkeeperCard{ShotsFaced: shotsFaced, GoalsConceded: goals, Saves: saves}
	if onGoal := saves + goals; onGoal > 0 {
		gk.SavePct = float64(saves) / float64(onGoal) * 100
	}
	return gk
}

// PerformanceIndex scores a card. Goalkeepers are scored on saves.
func PerformanceIndex(c model.PlayerCard) float64 {
	if c.Goalkeeper != nil {
		gk := c.Goalkeeper
		return float64(gk.Saves)*0.3 + gk.SavePct*0.05 - float64(gk.GoalsConceded)*0.5 + c.Passes.Precision()*0.01
	}
	return float64(c.Passes.Completed)*0.1 +
		float64(c.Shots.Goals)*3 +
		float64(c.Shots.OnTarget)*0.5 +
		float64(c.Recoveries)*0.5 -
		float64(c.Fouls)*0.2 -
		float64(c.Passes.Failed)*0.05 +
		float64(c.FindDepth)*0.2 +
		float64(c.FindFacing)*0.1 +
		float64(c.AttackBox)*0.3
}

// OfficialMinutes looks the player up in the minutes-played table, first by
// exact id or name and then by partial name.
func OfficialMinutes(table map[string]float64, player model.PlayerID) (float64, bool) {
	if len(table) == 0 || player == "" {
		return 0, false
	}
	if v, ok := table[string(player)]; ok {
		return v, true
	}
	name := player.Name()
	if v, ok := table[name]; ok {
		return v, true
	}
	lname := strings.ToLower(name)
	lid := strings.ToLower(string(player))
	for k, v := range table {
		lk := strings.ToLower(k)
		if lk == "" {
			continue
		}
		if strings.Contains(lk, lname) || strings.Contains(lid, lk) {
			return v, true
		}
	}
	return 0, false
}

// EstimateMinutes sums, per period, the span between a player's first and
// last recorded minute.
func EstimateMinutes(own []model.Event) float64 {
	type span struct{ min, max float64 }
	spans := make(map[int]*span)
	for _, e := range own {
		if math.IsNaN(e.Minute) {
			continue
		}
		s, ok := spans[e.Period]
		if !ok {
			spans[e.Period] = &span{e.Minute, e.Minute}
			continue
		}
		s.min = math.Min(s.min, e.Minute)
		s.max = math.Max(s.max, e.Minute)
	}
	total := 0.0
	for _, s := range spans {
		total += s.max - s.min + 1
	}
	return total
}

// SumCards accumulates cards from several matches into one.
func SumCards(cards []model.PlayerCard) model.PlayerCard {
	var out model.PlayerCard
	var gk *model.GoalkeeperCard
	for _, c := range cards {
		if out.Player == "" {
			out.Player = c.Player
			out.Team = c.Team
		}
		out.Matches += c.Matches
		out.Minutes += c.Minutes
		out.Actions += c.Actions
		out.Passes.Completed += c.Passes.Completed
		out.Passes.Failed += c.Passes.Failed
		out.Shots.Total += c.Shots.Total
		out.Shots.Goals += c.Shots.Goals
		out.Shots.OnTarget += c.Shots.OnTarget
		out.Shots.OffTarget += c.Shots.OffTarget
		out.Shots.Unclassified += c.Shots.Unclassified
		out.Fouls += c.Fouls
		out.Recoveries += c.Recoveries
		out.FindDepth += c.FindDepth
		out.FindFacing += c.FindFacing
		out.AttackBox += c.AttackBox
		if c.Goalkeeper != nil {
			if gk == nil {
				gk = &model.GoalkeeperCard{}
			}
			gk.ShotsFaced += c.Goalkeeper.ShotsFaced
			gk.GoalsConceded += c.Goalkeeper.GoalsConceded
			gk.Saves += c.Goalkeeper.Saves
		}
	}
	if gk != nil {
		total := newGoalkeeperCard(gk.ShotsFaced, gk.GoalsConceded, gk.Saves)
		out.Goalkeeper = &total
	}
	out.Index = PerformanceIndex(out)
	return out
}

// Players lists every player who acted for the team, sorted.
func Players(events []model.Event, team string) []model.PlayerID {
	set := make(map[model.PlayerID]bool)
	for _, e := range events {
		if e.Player != "" && sameTeam(e.Team, team) {
			set[e.Player] = true
		}
	}
	return sortedPlayers(set)
}
