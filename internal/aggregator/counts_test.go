package aggregator

import (
	"testing"

	"github.com/pable/go-match-metrics/internal/model"
)

func TestClassifyShot_Precedence(t *testing.T) {
	cases := []struct {
		group, text string
		want        model.ShotOutcome
	}{
		{model.GroupOnTarget, "Gol", model.ShotGoal},
		{model.GroupOffTarget, "Gol de cabeza", model.ShotGoal},
		{model.GroupOnTarget, "", model.ShotOnTarget},
		{model.GroupInside, "Parada", model.ShotOnTarget},
		{model.GroupOffTarget, "", model.ShotOffTarget},
		{"Bloqueado", "", model.ShotUnclassified},
		{"a puerta", "", model.ShotUnclassified},
	}
	for _, c := range cases {
		got := ClassifyShot(makeShot(model.DefaultTeam, c.group, c.text))
		if got != c.want {
			t.Errorf("group=%q text=%q: got %v, want %v", c.group, c.text, got, c.want)
		}
	}
}

func TestShotMap_Exhaustive(t *testing.T) {
	noCoords := makeShot(model.DefaultTeam, model.GroupOffTarget, "")
	noCoords.StartX = nan
	events := []model.Event{
		makeShot(model.DefaultTeam, model.GroupOnTarget, "Gol"),
		makeShot(model.DefaultTeam, model.GroupOnTarget, ""),
		makeShot(model.DefaultTeam, "Bloqueado", ""),
		noCoords,
		makeShot("Levante", model.GroupOnTarget, "Gol"),
	}
	sm, err := ShotMap(makeMatch(events), valenciaQuery())
	if err != nil {
		t.Fatalf("ShotMap: %v", err)
	}
	s := sm.Summary
	if s.Total != 4 {
		t.Fatalf("expected 4 team shots, got %d", s.Total)
	}
	if s.Goals+s.OnTarget+s.OffTarget+s.Unclassified != s.Total {
		t.Errorf("buckets do not sum to total: %+v", s)
	}
	if len(sm.Shots) != 3 {
		t.Errorf("shot without coordinates must not be plotted, got %d points", len(sm.Shots))
	}
	if s.Accuracy() != 50 || s.Conversion() != 25 {
		t.Errorf("accuracy=%f conversion=%f", s.Accuracy(), s.Conversion())
	}
	if len(sm.ByPlayer) != 1 || sm.ByPlayer[0].Count != 4 {
		t.Errorf("unexpected per-player counts %+v", sm.ByPlayer)
	}
}

func TestPassSummary(t *testing.T) {
	var empty model.PassSummary
	if empty.Precision() != 0 {
		t.Errorf("precision with no passes must be 0, got %f", empty.Precision())
	}

	events := []model.Event{
		makePass(playerA, playerB, 1),
		makePass(playerA, playerB, 2),
		makePass(playerA, playerB, 3),
		makePass(playerB, "", 4),
	}
	s := CountPasses(events, valenciaQuery())
	if s.Completed+s.Failed != len(events) {
		t.Errorf("partition broken: %+v", s)
	}
	if s.Precision() != 75 {
		t.Errorf("expected 75%% precision, got %f", s.Precision())
	}
}

func TestCountCorners_CompoundRule(t *testing.T) {
	corner := func(team, code string, group string) model.Event {
		c, _ := model.ParseCode(code)
		return model.Event{Team: team, Period: 1, Code: c, RawCode: code, Group: group}
	}
	events := []model.Event{
		corner(model.DefaultTeam, "Est.Generales", "Saque de esquina"),
		corner(model.DefaultTeam, "Est.Generales", "Saque de esquina"),
		corner("Levante", "Est.Generales", "Saque de esquina"),
		corner(model.DefaultTeam, "Est.Generales", "Fuera de juego"),
		corner(model.DefaultTeam, "Faltas", "Saque de esquina"),
	}
	c := CountCorners(events, valenciaQuery())
	if c.For != 2 || c.Against != 1 {
		t.Errorf("expected 2 for / 1 against, got %+v", c)
	}
}

func TestRecoveryMap_Zones(t *testing.T) {
	rec := func(x float64) model.Event {
		return model.Event{Team: model.DefaultTeam, Period: 1, Minute: 5, Code: model.CodeRecovery,
			Player: playerA, StartX: x, StartY: 80, EndX: nan, EndY: nan}
	}
	// normalized x = (x-5)/2: 205 -> 100, 125 -> 60 (not > 60), 45 -> 20
	events := []model.Event{rec(205), rec(125), rec(45), rec(nan)}
	rm, err := RecoveryMap(makeMatch(events), valenciaQuery())
	if err != nil {
		t.Fatalf("RecoveryMap: %v", err)
	}
	if rm.Total != 4 || len(rm.Recoveries) != 3 {
		t.Fatalf("expected 4 recoveries with 3 plotted, got %d/%d", rm.Total, len(rm.Recoveries))
	}
	if rm.ByZone[model.ZoneOwnHalf] != 1 || rm.ByZone[model.ZoneOpponentHalf] != 2 {
		t.Errorf("unexpected zones %v", rm.ByZone)
	}
}

func TestFoulMap_ByPeriod(t *testing.T) {
	foul := func(period int) model.Event {
		return model.Event{Team: model.DefaultTeam, Period: period, Minute: 5, Code: model.CodeFoul,
			Player: playerB, StartX: 100, StartY: 50, EndX: nan, EndY: nan}
	}
	events := []model.Event{foul(1), foul(1), foul(2)}
	fm, err := FoulMap(makeMatch(events), model.Query{Team: model.DefaultTeam, Period: model.SecondHalfPeriods()})
	if err != nil {
		t.Fatalf("FoulMap: %v", err)
	}
	if fm.Total != 1 || fm.ByPeriod[2] != 1 || fm.ByPeriod[1] != 0 {
		t.Errorf("unexpected foul map %+v", fm)
	}
}

func TestSpecificPasses(t *testing.T) {
	action := func(code model.Code, group string) model.Event {
		return model.Event{Team: model.DefaultTeam, Period: 1, Minute: 12, Code: code, Group: group,
			Player: playerA, Secondary: playerB, StartX: 100, StartY: 70, EndX: 180, EndY: 60}
	}
	events := []model.Event{
		action(model.CodeFindFacing, ""),
		action(model.CodeFindDepth, ""),
		action(model.CodeFindDepth, ""),
		action(model.CodeAttackBox, ""),
		action(model.CodeAttackBox, model.GroupAttackBoxPlus3),
	}
	sp, err := SpecificPasses(makeMatch(events), valenciaQuery())
	if err != nil {
		t.Fatalf("SpecificPasses: %v", err)
	}
	want := map[model.SpecificAction]int{
		model.ActionFindFacing:     1,
		model.ActionFindDepth:      2,
		model.ActionAttackBox:      2,
		model.ActionAttackBoxPlus3: 1,
	}
	for _, s := range sp {
		if len(s.Arrows) != want[s.Action] {
			t.Errorf("%s: got %d arrows, want %d", s.Action, len(s.Arrows), want[s.Action])
		}
	}
}

func TestParseCode_FlagsUnknown(t *testing.T) {
	if c, ok := model.ParseCode("Pases"); !ok || c != model.CodePass {
		t.Errorf("Pases: got %v %v", c, ok)
	}
	if c, ok := model.ParseCode("Tiros"); !ok || c != model.CodeShot {
		t.Errorf("Tiros alias: got %v %v", c, ok)
	}
	if _, ok := model.ParseCode("pases"); ok {
		t.Error("labels are case-sensitive")
	}
	if c, ok := model.ParseCode("Pase"); ok || c != model.CodeUnknown {
		t.Errorf("typo must be flagged, got %v %v", c, ok)
	}
}
