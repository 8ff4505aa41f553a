package pbp

import (
	"regexp"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// ErrMalformedEvent marks rows that cannot be turned into a typed Event.
var ErrMalformedEvent = crerr.New("malformed play-by-play event")

var scoreRegex = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)

// RawEvent is an event row as the upstream store holds it.
type RawEvent struct {
	ID                 int64
	GameID             string
	Number             int
	EventType          string
	Period             int
	GameClockSeconds   *float64
	TeamID             any
	HomeDescription    string
	VisitorDescription string
	NeutralDescription string
	Payload            []byte
}

// Parse converts a raw row into a typed Event. The state machine only ever sees the result.
func Parse(raw RawEvent) (Event, error) {
	gameID := strings.TrimSpace(raw.GameID)
	if gameID == "" {
		return Event{}, crerr.Wrapf(ErrMalformedEvent, "event id=%d: game_id is required", raw.ID)
	}
	if raw.ID <= 0 {
		return Event{}, crerr.Wrapf(ErrMalformedEvent, "game=%s event_num=%d: id must be > 0", gameID, raw.Number)
	}
	if raw.Period < 1 {
		return Event{}, crerr.Wrapf(ErrMalformedEvent, "event id=%d: period must be >= 1, got %d", raw.ID, raw.Period)
	}
	if raw.GameClockSeconds == nil || *raw.GameClockSeconds < 0 {
		return Event{}, crerr.Wrapf(ErrMalformedEvent, "event id=%d: game clock is missing or negative", raw.ID)
	}

	payload, err := decodePayload(raw.Payload)
	if err != nil {
		return Event{}, crerr.Wrapf(crerr.Mark(err, ErrMalformedEvent), "event id=%d: decode payload", raw.ID)
	}

	event := Event{
		ID:                 raw.ID,
		GameID:             gameID,
		Number:             raw.Number,
		Type:               ParseEventType(raw.EventType),
		Period:             raw.Period,
		GameClockSeconds:   *raw.GameClockSeconds,
		HomeDescription:    strings.TrimSpace(raw.HomeDescription),
		VisitorDescription: strings.TrimSpace(raw.VisitorDescription),
		NeutralDescription: strings.TrimSpace(raw.NeutralDescription),
		Payload:            payload,
	}

	event.TeamID, event.HasTeam = NormalizeTeamID(raw.TeamID)
	if !event.HasTeam {
		event.TeamID, event.HasTeam = NormalizeTeamID(payload["team_id"])
	}
	event.PossessionTeamID, event.HasPossessionTeamID = NormalizeTeamID(payload["possession_team_id"])

	switch event.Type {
	case EventMadeShot:
		event.ShotValue = payloadInt(payload, "shot_value", "points")
		event.Made = true
	case EventFreeThrow:
		event.Made = freeThrowMade(payload, Describe(event))
	}
	event.Score = payloadScore(payload)

	return event, nil
}

func decodePayload(raw []byte) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}
	out := make(map[string]any)
	if err := sonic.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func payloadInt(payload map[string]any, keys ...string) int {
	for _, key := range keys {
		value, ok := payload[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			return int(v)
		case int64:
			return int(v)
		case int:
			return v
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err == nil {
				return int(n)
			}
		}
	}
	return 0
}

func freeThrowMade(payload map[string]any, description string) bool {
	if value, ok := payload["made"].(bool); ok {
		return value
	}
	if value, ok := payload["shot_result"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "made", "make":
			return true
		case "missed", "miss":
			return false
		}
	}
	return !MatchesPhrase(description, "miss")
}

func payloadScore(payload map[string]any) *Score {
	if raw, ok := payload["score"].(string); ok {
		if m := scoreRegex.FindStringSubmatch(raw); m != nil {
			// Upstream renders "visitor - home".
			visitor, _ := strconv.Atoi(m[1])
			home, _ := strconv.Atoi(m[2])
			return &Score{Home: home, Visitor: visitor}
		}
	}
	_, hasHome := payload["score_home"]
	_, hasVisitor := payload["score_visitor"]
	if hasHome && hasVisitor {
		return &Score{
			Home:    payloadInt(payload, "score_home"),
			Visitor: payloadInt(payload, "score_visitor"),
		}
	}
	return nil
}
