package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultTeam is the academy side analysed when no team is given.
const DefaultTeam = "Valencia"

// Spreadsheet column names. These are part of the input format and match verbatim.
const (
	ColTeam      = "Team"
	ColPeriod    = "Periodo"
	ColMinute    = "Mins"
	ColCode      = "code"
	ColGroup     = "group"
	ColText      = "text"
	ColPlayer    = "Player"
	ColSecondary = "Secundary"
	ColStartX    = "startX"
	ColStartY    = "startY"
	ColEndX      = "endX"
	ColEndY      = "endY"

	// Optional official minutes-played table embedded in the same sheet.
	ColRosterName    = "Jugadores"
	ColRosterMinutes = "M.J"
)

// EventColumns lists every per-event column the parser understands.
var EventColumns = []string{
	ColTeam, ColPeriod, ColMinute, ColCode, ColGroup, ColText,
	ColPlayer, ColSecondary, ColStartX, ColStartY, ColEndX, ColEndY,
}

// ---- Labels ----

// Code is the closed set of event categories found in the code column.
type Code int

const (
	CodeUnknown Code = iota
	CodePass
	CodeFoul
	CodeShot
	CodeRecovery
	CodeSubstitution
	CodeFindFacing
	CodeFindDepth
	CodeAttackBox
	CodeGeneralStats
)

var codeLabels = map[Code]string{
	CodePass:         "Pases",
	CodeFoul:         "Faltas",
	CodeShot:         "Finalizaciones",
	CodeRecovery:     "Recuperaciones",
	CodeSubstitution: "Sustitucion",
	CodeFindFacing:   "Encontrar Futbolista de cara",
	CodeFindDepth:    "Encontrar Futbolista en profundidad",
	CodeAttackBox:    "Atacar el área",
	CodeGeneralStats: "Est.Generales",
}

var codeByLabel = func() map[string]Code {
	m := make(map[string]Code, len(codeLabels)+1)
	for c, l := range codeLabels {
		m[l] = c
	}
	// older exports tag shots as "Tiros"
	m["Tiros"] = CodeShot
	return m
}()

func (c Code) String() string {
	if l, ok := codeLabels[c]; ok {
		return l
	}
	return "?"
}

// ParseCode maps a raw code label to its Code. Unrecognised labels return
// CodeUnknown and false so the caller can report them.
func ParseCode(s string) (Code, bool) {
	c, ok := codeByLabel[strings.TrimSpace(s)]
	if !ok {
		return CodeUnknown, false
	}
	return c, true
}

// Group and text values with fixed meaning.
const (
	GroupOnTarget       = "A puerta"
	GroupInside         = "Dentro"
	GroupOffTarget      = "Fuera"
	GroupCorner         = "Saque de esquina"
	GroupAttackBoxPlus3 = "Atacar el área con +3"
	TextGoal            = "Gol"
)

// ShotOutcome is the mutually exclusive classification of a shot.
type ShotOutcome int

const (
	ShotUnclassified ShotOutcome = iota
	ShotGoal
	ShotOnTarget
	ShotOffTarget
)

func (o ShotOutcome) String() string {
	switch o {
	case ShotGoal:
		return "goal"
	case ShotOnTarget:
		return "on_target"
	case ShotOffTarget:
		return "off_target"
	default:
		return "unclassified"
	}
}

func (o ShotOutcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *ShotOutcome) UnmarshalText(b []byte) error {
	for _, c := range []ShotOutcome{ShotUnclassified, ShotGoal, ShotOnTarget, ShotOffTarget} {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown shot outcome %q", b)
}

// Zone is the half of the pitch a recovery happened in.
type Zone string

const (
	ZoneOwnHalf      Zone = "Campo Propio"
	ZoneOpponentHalf Zone = "Campo Contrario"
)

// ---- Players ----

// PlayerID identifies a player as "<number>. <name>".
type PlayerID string

// Number returns the shirt number prefix, or "" when the id has none.
func (p PlayerID) Number() string {
	num, _, ok := strings.Cut(string(p), ". ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(num)
}

// Name returns the id without its number prefix.
func (p PlayerID) Name() string {
	_, name, ok := strings.Cut(string(p), ". ")
	if !ok {
		return strings.TrimSpace(string(p))
	}
	return strings.TrimSpace(name)
}

// ---- Events ----

// Event is one validated spreadsheet row. Missing numeric cells are NaN and a
// missing receiver is the empty PlayerID.
type Event struct {
	Row       int // 1-based sheet row, header excluded
	Team      string
	Period    int // 0 when the cell was empty or not numeric
	Minute    float64
	Code      Code
	RawCode   string
	Group     string
	Text      string
	Player    PlayerID
	Secondary PlayerID
	StartX    float64
	StartY    float64
	EndX      float64
	EndY      float64
}

// Receiver returns the secondary player, if one was recorded.
func (e Event) Receiver() (PlayerID, bool) {
	return e.Secondary, e.Secondary != ""
}

// HasStart reports whether both start coordinates are present and finite.
func (e Event) HasStart() bool {
	return finite(e.StartX) && finite(e.StartY)
}

// HasEnd reports whether both end coordinates are present and finite.
func (e Event) HasEnd() bool {
	return finite(e.EndX) && finite(e.EndY)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Point is a position on the canonical 120x80 pitch.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether the point can be plotted.
func (p Point) Valid() bool {
	return finite(p.X) && finite(p.Y)
}

// ---- Matches ----

// MatchSummary is the catalog record of an ingested match file.
type MatchSummary struct {
	Hash       string    `json:"hash"`
	FileName   string    `json:"file_name"`
	Team       string    `json:"team"`
	Opponent   string    `json:"opponent"`
	MatchDate  string    `json:"match_date"`
	UploadedAt time.Time `json:"uploaded_at"`
	StoredPath string    `json:"stored_path,omitempty"`
	EventCount int       `json:"event_count"`
	Columns    []string  `json:"columns"`
}

// Match is a parsed match file together with its catalog record.
type Match struct {
	MatchSummary
	Events        []Event
	MinutesPlayed map[string]float64 // official minutes keyed by roster name
	UnknownCodes  map[string]int
	MalformedRows int
}

// HasColumn reports whether the source file carried the named column.
func (m *Match) HasColumn(name string) bool {
	for _, c := range m.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of required columns absent from the file.
func (m *Match) MissingColumns(required []string) []string {
	var missing []string
	for _, r := range required {
		if !m.HasColumn(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// Teams returns the distinct team names in event order.
func (m *Match) Teams() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.Events {
		if e.Team == "" || seen[e.Team] {
			continue
		}
		seen[e.Team] = true
		out = append(out, e.Team)
	}
	return out
}

// ---- Requests ----

// Query selects the slice of a match a view is computed over.
type Query struct {
	Team   string       `json:"team"`
	Period PeriodFilter `json:"period"`
}
