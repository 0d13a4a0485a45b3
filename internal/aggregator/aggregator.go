package aggregator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pable/go-match-metrics/internal/model"
)

// View names, used for column checks, report errors and metrics labels.
const (
	ViewNetwork    = "network"
	ViewMatrix     = "matrix"
	ViewShots      = "shots"
	ViewFouls      = "fouls"
	ViewRecoveries = "recoveries"
	ViewSpecific   = "specific_passes"
)

// Views lists every column-checked view in report order.
var Views = []string{ViewNetwork, ViewMatrix, ViewShots, ViewFouls, ViewRecoveries, ViewSpecific}

var requiredColumns = map[string][]string{
	ViewNetwork:    {model.ColPlayer, model.ColSecondary, model.ColStartX, model.ColStartY, model.ColEndX, model.ColEndY, model.ColPeriod},
	ViewMatrix:     {model.ColPlayer, model.ColSecondary, model.ColPeriod},
	ViewShots:      {model.ColTeam, model.ColCode, model.ColMinute, model.ColStartX, model.ColStartY, model.ColGroup, model.ColPlayer, model.ColText},
	ViewFouls:      {model.ColTeam, model.ColCode, model.ColStartX, model.ColStartY, model.ColPeriod, model.ColPlayer},
	ViewRecoveries: {model.ColTeam, model.ColCode, model.ColStartX, model.ColStartY, model.ColPeriod, model.ColPlayer},
	ViewSpecific: {
		model.ColTeam, model.ColCode, model.ColGroup, model.ColPeriod, model.ColMinute,
		model.ColStartX, model.ColStartY, model.ColEndX, model.ColEndY, model.ColPlayer, model.ColSecondary,
	},
}

// RequiredColumns returns the columns a view needs.
func RequiredColumns(view string) []string {
	return append([]string(nil), requiredColumns[view]...)
}

// MissingColumnsError reports a view that cannot be built from the file.
type MissingColumnsError struct {
	View     string
	Required []string
	Missing  []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing columns %s (required: %s)",
		e.View, strings.Join(e.Missing, ", "), strings.Join(e.Required, ", "))
}

// IsMissingColumns reports whether err carries a MissingColumnsError.
func IsMissingColumns(err error) bool {
	var mce *MissingColumnsError
	return errors.As(err, &mce)
}

func checkColumns(m *model.Match, view string) error {
	if m == nil {
		return fmt.Errorf("%s: nil match", view)
	}
	req := requiredColumns[view]
	if missing := m.MissingColumns(req); len(missing) > 0 {
		return &MissingColumnsError{View: view, Required: req, Missing: missing}
	}
	return nil
}

// NewQuery builds a query from user input. A blank team selects defaultTeam,
// or the academy team when that is blank too.
func NewQuery(team, period, defaultTeam string) (model.Query, error) {
	f, err := model.ParsePeriodFilter(period)
	if err != nil {
		return model.Query{}, err
	}
	team = strings.TrimSpace(team)
	if team == "" {
		team = strings.TrimSpace(defaultTeam)
	}
	if team == "" {
		team = model.DefaultTeam
	}
	return model.Query{Team: team, Period: f}, nil
}

// Analyze builds every view for one match. A view that cannot be built is
// recorded in the report's Errors and the others still run; empty views add a
// warning.
func Analyze(m *model.Match, q model.Query) (*model.MatchReport, error) {
	if m == nil {
		return nil, fmt.Errorf("nil Match")
	}
	if q.Team == "" {
		q.Team = model.DefaultTeam
	}

	ranges := TimeRanges(m.Events)
	rep := &model.MatchReport{
		Match:       m.MatchSummary,
		Query:       q,
		TimeRanges:  ranges,
		Substitutes: sortedPlayers(Substitutes(m.Events, q.Team, ranges)),
		Passes:      CountPasses(m.Events, q),
		Corners:     CountCorners(m.Events, q),
	}
	ts := TeamStats(m, q.Team)
	rep.Team = &ts

	fail := func(view string, err error) {
		if rep.Errors == nil {
			rep.Errors = make(map[string]string)
		}
		rep.Errors[view] = err.Error()
	}
	warn := func(format string, args ...any) {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(format, args...))
	}
	sel := fmt.Sprintf("%s, period %s", q.Team, q.Period)

	if net, err := PassingNetwork(m, q); err != nil {
		fail(ViewNetwork, err)
	} else {
		rep.Network = net
		if net.PassCount == 0 {
			warn("no completed passes with coordinates for %s", sel)
		}
	}
	if mx, err := PassMatrix(m, q); err != nil {
		fail(ViewMatrix, err)
	} else {
		rep.Matrix = mx
	}
	if sm, err := ShotMap(m, q); err != nil {
		fail(ViewShots, err)
	} else {
		rep.Shots = sm
		if sm.Summary.Total == 0 {
			warn("no shots for %s", sel)
		}
	}
	if fm, err := FoulMap(m, q); err != nil {
		fail(ViewFouls, err)
	} else {
		rep.Fouls = fm
		if fm.Total == 0 {
			warn("no fouls for %s", sel)
		}
	}
	if rm, err := RecoveryMap(m, q); err != nil {
		fail(ViewRecoveries, err)
	} else {
		rep.Recoveries = rm
		if rm.Total == 0 {
			warn("no recoveries for %s", sel)
		}
	}
	if sp, err := SpecificPasses(m, q); err != nil {
		fail(ViewSpecific, err)
	} else {
		rep.SpecificPasses = sp
	}
	if rep.Passes.Total() == 0 {
		warn("no passes for %s", sel)
	}
	if len(m.UnknownCodes) > 0 {
		warn("%d unrecognised code labels in file", len(m.UnknownCodes))
	}
	return rep, nil
}
