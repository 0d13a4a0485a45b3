package aggregator

import (
	"math"
	"testing"

	"github.com/pable/go-match-metrics/internal/model"
)

func makeCardMatch() *model.Match {
	ev := func(code model.Code, minute float64, group, text string, secondary model.PlayerID) model.Event {
		return model.Event{Team: model.DefaultTeam, Period: 1, Minute: minute, Code: code, Group: group, Text: text,
			Player: playerB, Secondary: secondary, StartX: 150, StartY: 70, EndX: 170, EndY: 70}
	}
	rivalShot := func(group, text string) model.Event {
		e := makeShot("Levante", group, text)
		e.Player = "1. Rival"
		return e
	}
	events := []model.Event{
		ev(model.CodePass, 5, "", "", playerA),
		ev(model.CodePass, 6, "", "", playerA),
		ev(model.CodePass, 7, "", "", ""),
		ev(model.CodeShot, 20, model.GroupOnTarget, "Gol", ""),
		ev(model.CodeShot, 25, model.GroupOnTarget, "", ""),
		ev(model.CodeFoul, 30, "", "", ""),
		ev(model.CodeRecovery, 31, "", "", ""),
		ev(model.CodeFindDepth, 32, "", "", playerA),
		ev(model.CodeFindFacing, 33, "", "", playerA),
		ev(model.CodeAttackBox, 34, "", "", ""),
		rivalShot(model.GroupOnTarget, "Gol"),
		rivalShot(model.GroupOnTarget, ""),
		rivalShot(model.GroupInside, ""),
		rivalShot(model.GroupOffTarget, ""),
	}
	return makeMatch(events)
}

func TestPlayerCard_Counts(t *testing.T) {
	card := PlayerCard(makeCardMatch(), valenciaQuery(), "B", CardOptions{})
	if card.Player != playerB {
		t.Errorf("expected resolved id %q, got %q", playerB, card.Player)
	}
	if card.Passes.Completed != 2 || card.Passes.Failed != 1 {
		t.Errorf("passes: %+v", card.Passes)
	}
	if card.Shots.Total != 2 || card.Shots.Goals != 1 || card.Shots.OnTarget != 1 {
		t.Errorf("shots: %+v", card.Shots)
	}
	if card.Fouls != 1 || card.Recoveries != 1 || card.FindDepth != 1 || card.FindFacing != 1 || card.AttackBox != 1 {
		t.Errorf("counters: %+v", card)
	}
	// 2*0.1 + 1*3 + 1*0.5 + 1*0.5 - 1*0.2 - 1*0.05 + 0.2 + 0.1 + 0.3
	want := 4.55
	if math.Abs(card.Index-want) > 1e-9 {
		t.Errorf("index: got %f, want %f", card.Index, want)
	}
	// estimated from events: 34 - 5 + 1
	if card.OfficialMinutes || card.Minutes != 30 {
		t.Errorf("minutes: got %f official=%v", card.Minutes, card.OfficialMinutes)
	}
}

func TestPlayerCard_OfficialMinutes(t *testing.T) {
	m := makeCardMatch()
	m.MinutesPlayed = map[string]float64{"B": 62}
	card := PlayerCard(m, valenciaQuery(), string(playerB), CardOptions{})
	if !card.OfficialMinutes || card.Minutes != 62 {
		t.Errorf("expected official 62 minutes, got %f official=%v", card.Minutes, card.OfficialMinutes)
	}

	m.MinutesPlayed = map[string]float64{"Jugador B Pérez": 70}
	if _, ok := OfficialMinutes(m.MinutesPlayed, "9. Pérez"); !ok {
		t.Error("expected partial name match")
	}
}

func TestPlayerCard_Goalkeeper(t *testing.T) {
	card := PlayerCard(makeCardMatch(), valenciaQuery(), string(playerB), CardOptions{Goalkeeper: true})
	gk := card.Goalkeeper
	if gk == nil {
		t.Fatal("expected goalkeeper card")
	}
	if gk.ShotsFaced != 4 || gk.GoalsConceded != 1 || gk.Saves != 2 {
		t.Errorf("goalkeeper: %+v", *gk)
	}
	if math.Abs(gk.SavePct-200.0/3) > 1e-9 {
		t.Errorf("save pct: got %f", gk.SavePct)
	}
}

func TestIsGoalkeeperPosition(t *testing.T) {
	for _, p := range []string{"Portero", "GOALKEEPER", "arquero suplente", "Porter"} {
		if !IsGoalkeeperPosition(p) {
			t.Errorf("%q should be a goalkeeper", p)
		}
	}
	if IsGoalkeeperPosition("Defensa") {
		t.Error("Defensa is not a goalkeeper")
	}
}

func TestSumCards(t *testing.T) {
	m := makeCardMatch()
	one := PlayerCard(m, valenciaQuery(), string(playerB), CardOptions{})
	total := SumCards([]model.PlayerCard{one, one})
	if total.Matches != 2 || total.Passes.Completed != 4 || total.Shots.Goals != 2 {
		t.Errorf("unexpected totals %+v", total)
	}
	if math.Abs(total.Index-2*one.Index) > 1e-9 {
		t.Errorf("index should be additive: %f vs %f", total.Index, 2*one.Index)
	}
}

func TestTeamStats(t *testing.T) {
	m := makeCardMatch()
	m.Events = append(m.Events,
		model.Event{Team: "Levante", Period: 1, Code: model.CodeFoul},
		model.Event{Team: model.DefaultTeam, Period: 1, Code: model.CodeGeneralStats, Group: model.GroupCorner},
		model.Event{Team: "Levante", Period: 2, Code: model.CodeGeneralStats, Group: model.GroupCorner},
	)
	ts := TeamStats(m, model.DefaultTeam)
	if ts.GoalsFor != 1 || ts.GoalsAgainst != 1 {
		t.Errorf("goals: %+v", ts)
	}
	if ts.FoulsCommitted != 1 || ts.FoulsReceived != 1 {
		t.Errorf("fouls: %+v", ts)
	}
	if ts.ShotsOnTarget != 1 || ts.ShotsOffTarget != 0 {
		t.Errorf("shots: %+v", ts)
	}
	if ts.CornersFor != 1 || ts.CornersAgainst != 1 {
		t.Errorf("corners: %+v", ts)
	}
	if ts.PassesCompleted != 2 || ts.PassesFailed != 1 {
		t.Errorf("passes: %+v", ts)
	}

	sum := SumTeamStats(model.DefaultTeam, []model.TeamStats{ts, ts})
	if sum.Matches != 2 || sum.GoalsFor != 2 || sum.PerMatch(sum.GoalsFor) != 1 {
		t.Errorf("sum: %+v", sum)
	}
}
