package aggregator

import "github.com/pable/go-match-metrics/internal/model"

// TeamStats summarises one match for team. Every other non-empty team in the
// file counts as the rival.
func TeamStats(m *model.Match, team string) model.TeamStats {
	ts := model.TeamStats{Team: team, Matches: 1}
	for _, e := range m.Events {
		if e.Team == "" {
			continue
		}
		ours := sameTeam(e.Team, team)
		switch {
		case e.Code == model.CodeShot:
			outcome := ClassifyShot(e)
			if !ours {
				if outcome == model.ShotGoal {
					ts.GoalsAgainst++
				}
				continue
			}
			switch outcome {
			case model.ShotGoal:
				ts.GoalsFor++
			case model.ShotOnTarget:
				ts.ShotsOnTarget++
			case model.ShotOffTarget:
				ts.ShotsOffTarget++
			}
		case e.Code == model.CodeFoul:
			if ours {
				ts.FoulsCommitted++
			} else {
				ts.FoulsReceived++
			}
		case IsCorner(e):
			if ours {
				ts.CornersFor++
			} else {
				ts.CornersAgainst++
			}
		case e.Code == model.CodePass && ours:
			if _, ok := e.Receiver(); ok {
				ts.PassesCompleted++
			} else {
				ts.PassesFailed++
			}
		}
	}
	return ts
}

// SumTeamStats adds several match summaries together.
func SumTeamStats(team string, stats []model.TeamStats) model.TeamStats {
	out := model.TeamStats{Team: team}
	for _, s := range stats {
		out.Matches += s.Matches
		out.GoalsFor += s.GoalsFor
		out.GoalsAgainst += s.GoalsAgainst
		out.FoulsCommitted += s.FoulsCommitted
		out.FoulsReceived += s.FoulsReceived
		out.ShotsOnTarget += s.ShotsOnTarget
		out.ShotsOffTarget += s.ShotsOffTarget
		out.CornersFor += s.CornersFor
		out.CornersAgainst += s.CornersAgainst
		out.PassesCompleted += s.PassesCompleted
		out.PassesFailed += s.PassesFailed
	}
	return out
}
