package pbp

import "strings"

// EventType is the canonical play-by-play taxonomy.
type EventType string

const (
	EventMadeShot     EventType = "made_shot"
	EventMissedShot   EventType = "missed_shot"
	EventFreeThrow    EventType = "free_throw"
	EventRebound      EventType = "rebound"
	EventTurnover     EventType = "turnover"
	EventFoul         EventType = "foul"
	EventViolation    EventType = "violation"
	EventJumpBall     EventType = "jump_ball"
	EventPeriodStart  EventType = "period_start"
	EventPeriodEnd    EventType = "period_end"
	EventSubstitution EventType = "substitution"
	EventTimeout      EventType = "timeout"
	EventUnclassified EventType = "unclassified"
)

// ParseEventType maps upstream labels onto the taxonomy. Unknown labels,
// including the upstream "other" bucket, become EventUnclassified.
func ParseEventType(raw string) EventType {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.NewReplacer("-", "_", " ", "_").Replace(value)
	switch EventType(value) {
	case EventMadeShot, EventMissedShot, EventFreeThrow, EventRebound, EventTurnover,
		EventFoul, EventViolation, EventJumpBall, EventPeriodStart, EventPeriodEnd,
		EventSubstitution, EventTimeout:
		return EventType(value)
	}
	switch value {
	case "shot_made", "field_goal_made", "fgm":
		return EventMadeShot
	case "shot_missed", "field_goal_missed", "fga_missed":
		return EventMissedShot
	case "ft", "freethrow":
		return EventFreeThrow
	case "start_of_period", "period_begin":
		return EventPeriodStart
	case "end_of_period":
		return EventPeriodEnd
	case "sub":
		return EventSubstitution
	case "jumpball":
		return EventJumpBall
	default:
		return EventUnclassified
	}
}

// Score is the running score carried by some feeds.
type Score struct {
	Home    int
	Visitor int
}

// Event is one typed play-by-play row. Values are immutable once parsed.
type Event struct {
	ID               int64
	GameID           string
	Number           int
	Type             EventType
	Period           int
	GameClockSeconds float64

	TeamID  int64
	HasTeam bool
	// PossessionTeamID is the team awarded the ball on jump balls, when the feed says so.
	PossessionTeamID    int64
	HasPossessionTeamID bool

	HomeDescription    string
	VisitorDescription string
	NeutralDescription string

	// ShotValue is the payload's point value for made shots; 0 when absent.
	ShotValue int
	// Made is set for free throws.
	Made  bool
	Score *Score

	Payload map[string]any
}

// Team returns the normalized team and whether it is known.
func (e Event) Team() (int64, bool) {
	return e.TeamID, e.HasTeam
}

// IsProvenance reports events that never move a possession by themselves.
func (e Event) IsProvenance() bool {
	switch e.Type {
	case EventPeriodStart, EventTimeout, EventSubstitution:
		return true
	default:
		return false
	}
}

// Game carries the two participants of a game.
type Game struct {
	ID            string
	HomeTeamID    int64
	VisitorTeamID int64
}

// Opponent returns the other participant, or false when teamID does not play in the game.
func (g Game) Opponent(teamID int64) (int64, bool) {
	switch {
	case g.HomeTeamID == 0 || g.VisitorTeamID == 0:
		return 0, false
	case teamID == g.HomeTeamID:
		return g.VisitorTeamID, true
	case teamID == g.VisitorTeamID:
		return g.HomeTeamID, true
	default:
		return 0, false
	}
}

// Has reports whether teamID is one of the participants.
func (g Game) Has(teamID int64) bool {
	return teamID != 0 && (teamID == g.HomeTeamID || teamID == g.VisitorTeamID)
}

// Complete reports whether both participants are known.
func (g Game) Complete() bool {
	return g.HomeTeamID != 0 && g.VisitorTeamID != 0 && g.HomeTeamID != g.VisitorTeamID
}

// InferTeams fills missing participants from the teams seen in events, in order of appearance.
func (g Game) InferTeams(events []Event) Game {
	if g.Complete() {
		return g
	}
	seen := make([]int64, 0, 2)
	if g.HomeTeamID != 0 {
		seen = append(seen, g.HomeTeamID)
	}
	if g.VisitorTeamID != 0 && g.VisitorTeamID != g.HomeTeamID {
		seen = append(seen, g.VisitorTeamID)
	}
	for _, event := range events {
		if len(seen) == 2 {
			break
		}
		if !event.HasTeam {
			continue
		}
		known := false
		for _, id := range seen {
			if id == event.TeamID {
				known = true
				break
			}
		}
		if !known {
			seen = append(seen, event.TeamID)
		}
	}

	// A known participant keeps its slot; only the empty slot is filled.
	out := g
	if out.VisitorTeamID == out.HomeTeamID {
		out.VisitorTeamID = 0
	}
	if out.HomeTeamID == 0 {
		out.HomeTeamID = firstOther(seen, out.VisitorTeamID)
	}
	if out.VisitorTeamID == 0 {
		out.VisitorTeamID = firstOther(seen, out.HomeTeamID)
	}
	return out
}

func firstOther(seen []int64, exclude int64) int64 {
	for _, id := range seen {
		if id != exclude {
			return id
		}
	}
	return 0
}
