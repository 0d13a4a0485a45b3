package model

import "fmt"

// ---- Passing network ----

type PassNode struct {
	Player        PlayerID `json:"player"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Participation int      `json:"participation"`
	MarkerSize    float64  `json:"marker_size"`
	Substitute    bool     `json:"substitute"`
}

type PassEdge struct {
	Passer   PlayerID `json:"passer"`
	Receiver PlayerID `json:"receiver"`
	Count    int      `json:"count"`
	Width    float64  `json:"width"`
}

// PassNetwork is the node and edge table for one team and period selection.
type PassNetwork struct {
	Team      string     `json:"team"`
	Period    string     `json:"period"`
	Range     string     `json:"range,omitempty"`
	PassCount int        `json:"pass_count"`
	Nodes     []PassNode `json:"nodes"`
	Edges     []PassEdge `json:"edges"`
}

// PassMatrix counts completed passes between every passer and receiver.
// Counts[i][j] is passes from Players[i] to Players[j].
type PassMatrix struct {
	Team     string     `json:"team"`
	Period   string     `json:"period"`
	Players  []PlayerID `json:"players"`
	Counts   [][]int    `json:"counts"`
	Made     []int      `json:"made"`
	Received []int      `json:"received"`
}

// ---- Counters ----

// PassSummary partitions passes by completion.
type PassSummary struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

func (p PassSummary) Total() int { return p.Completed + p.Failed }

// Precision is the completion percentage, 0 when there were no passes.
func (p PassSummary) Precision() float64 {
	if p.Total() == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total()) * 100
}

// ShotSummary counts shots by outcome. The four buckets sum to Total.
type ShotSummary struct {
	Total        int `json:"total"`
	Goals        int `json:"goals"`
	OnTarget     int `json:"on_target"`
	OffTarget    int `json:"off_target"`
	Unclassified int `json:"unclassified"`
}

func (s *ShotSummary) Add(o ShotOutcome) {
	s.Total++
	switch o {
	case ShotGoal:
		s.Goals++
	case ShotOnTarget:
		s.OnTarget++
	case ShotOffTarget:
		s.OffTarget++
	default:
		s.Unclassified++
	}
}

// Accuracy is the share of shots that were goals or on target.
func (s ShotSummary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Goals+s.OnTarget) / float64(s.Total) * 100
}

// Conversion is the share of shots that were goals.
func (s ShotSummary) Conversion() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Goals) / float64(s.Total) * 100
}

type PlayerCount struct {
	Player PlayerID `json:"player"`
	Count  int      `json:"count"`
}

// EventPoint is a plotted event on the canonical pitch.
type EventPoint struct {
	Player PlayerID `json:"player"`
	Period int      `json:"period"`
	Minute float64  `json:"minute"`
	Point
}

type ShotPoint struct {
	EventPoint
	Outcome ShotOutcome `json:"outcome"`
}

type ShotMap struct {
	Team     string        `json:"team"`
	Period   string        `json:"period"`
	Summary  ShotSummary   `json:"summary"`
	Shots    []ShotPoint   `json:"shots"`
	ByPlayer []PlayerCount `json:"by_player"`
}

type FoulMap struct {
	Team     string        `json:"team"`
	Period   string        `json:"period"`
	Total    int           `json:"total"`
	Fouls    []EventPoint  `json:"fouls"`
	ByPlayer []PlayerCount `json:"by_player"`
	ByPeriod map[int]int   `json:"by_period"`
}

type RecoveryPoint struct {
	EventPoint
	Zone Zone `json:"zone"`
}

type RecoveryMap struct {
	Team       string          `json:"team"`
	Period     string          `json:"period"`
	Total      int             `json:"total"`
	Recoveries []RecoveryPoint `json:"recoveries"`
	ByPlayer   []PlayerCount   `json:"by_player"`
	ByZone     map[Zone]int    `json:"by_zone"`
}

// SpecificAction is a tagged attacking action drawn as arrows.
type SpecificAction int

const (
	ActionFindFacing SpecificAction = iota
	ActionFindDepth
	ActionAttackBox
	ActionAttackBoxPlus3
)

// SpecificActions lists every action in display order.
var SpecificActions = []SpecificAction{ActionFindFacing, ActionFindDepth, ActionAttackBox, ActionAttackBoxPlus3}

func (a SpecificAction) String() string {
	switch a {
	case ActionFindFacing:
		return CodeFindFacing.String()
	case ActionFindDepth:
		return CodeFindDepth.String()
	case ActionAttackBox:
		return CodeAttackBox.String()
	default:
		return GroupAttackBoxPlus3
	}
}

func (a SpecificAction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *SpecificAction) UnmarshalText(b []byte) error {
	for _, c := range SpecificActions {
		if c.String() == string(b) {
			*a = c
			return nil
		}
	}
	return fmt.Errorf("unknown specific action %q", b)
}

type Arrow struct {
	Player   PlayerID `json:"player"`
	Receiver PlayerID `json:"receiver,omitempty"`
	Minute   float64  `json:"minute"`
	Start    Point    `json:"start"`
	End      Point    `json:"end"`
}

type SpecificPasses struct {
	Action SpecificAction `json:"action"`
	Arrows []Arrow        `json:"arrows"`
}

type CornerCount struct {
	For     int `json:"for"`
	Against int `json:"against"`
}

// ---- Cards ----

type GoalkeeperCard struct {
	ShotsFaced    int     `json:"shots_faced"`
	GoalsConceded int     `json:"goals_conceded"`
	Saves         int     `json:"saves"`
	SavePct       float64 `json:"save_pct"`
}

// PlayerCard is the per-player performance summary for one or more matches.
type PlayerCard struct {
	Player          PlayerID        `json:"player"`
	Team            string          `json:"team"`
	Matches         int             `json:"matches"`
	Minutes         float64         `json:"minutes"`
	OfficialMinutes bool            `json:"official_minutes"`
	Actions         int             `json:"actions"`
	Passes          PassSummary     `json:"passes"`
	Shots           ShotSummary     `json:"shots"`
	Fouls           int             `json:"fouls"`
	Recoveries      int             `json:"recoveries"`
	FindDepth       int             `json:"find_depth"`
	FindFacing      int             `json:"find_facing"`
	AttackBox       int             `json:"attack_box"`
	Index           float64         `json:"performance_index"`
	Goalkeeper      *GoalkeeperCard `json:"goalkeeper,omitempty"`
}

// PlayerMatchRow is one match line of a player's history.
type PlayerMatchRow struct {
	Match MatchSummary `json:"match"`
	Card  PlayerCard   `json:"card"`
}

// TeamStats summarises a team's match from its own and the rival's events.
type TeamStats struct {
	Team            string `json:"team"`
	Matches         int    `json:"matches"`
	GoalsFor        int    `json:"goals_for"`
	GoalsAgainst    int    `json:"goals_against"`
	FoulsCommitted  int    `json:"fouls_committed"`
	FoulsReceived   int    `json:"fouls_received"`
	ShotsOnTarget   int    `json:"shots_on_target"`
	ShotsOffTarget  int    `json:"shots_off_target"`
	CornersFor      int    `json:"corners_for"`
	CornersAgainst  int    `json:"corners_against"`
	PassesCompleted int    `json:"passes_completed"`
	PassesFailed    int    `json:"passes_failed"`
}

// PerMatch divides a count by the number of matches, 0 when there are none.
func (t TeamStats) PerMatch(v int) float64 {
	if t.Matches == 0 {
		return 0
	}
	return float64(v) / float64(t.Matches)
}

// MatchReport bundles every view for one match and query.
type MatchReport struct {
	Match          MatchSummary      `json:"match"`
	Query          Query             `json:"query"`
	TimeRanges     TimeRanges        `json:"time_ranges"`
	Substitutes    []PlayerID        `json:"substitutes"`
	Network        *PassNetwork      `json:"network,omitempty"`
	Matrix         *PassMatrix       `json:"matrix,omitempty"`
	Shots          *ShotMap          `json:"shots,omitempty"`
	Fouls          *FoulMap          `json:"fouls,omitempty"`
	Recoveries     *RecoveryMap      `json:"recoveries,omitempty"`
	SpecificPasses []SpecificPasses  `json:"specific_passes,omitempty"`
	Passes         PassSummary       `json:"passes"`
	Corners        CornerCount       `json:"corners"`
	Team           *TeamStats        `json:"team_stats,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
	Errors         map[string]string `json:"errors,omitempty"`
}
