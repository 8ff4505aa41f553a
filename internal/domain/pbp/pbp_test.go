package pbp

import (
	"database/sql"
	"encoding/json"
	"math"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTeamID(t *testing.T) {
	t.Parallel()

	text := "1610612738"
	cases := []struct {
		name   string
		raw    any
		want   int64
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"int", 1610612737, 1610612737, true},
		{"int64", int64(42), 42, true},
		{"float", 1610612738.0, 1610612738, true},
		{"float truncates", 12.9, 12, true},
		{"string", "1610612737", 1610612737, true},
		{"float string", "1610612738.0", 1610612738, true},
		{"padded string", "  77 ", 77, true},
		{"empty string", "", 0, false},
		{"null string", "NULL", 0, false},
		{"nan string", "NaN", 0, false},
		{"garbage", "lakers", 0, false},
		{"zero", 0, 0, false},
		{"negative", "-5", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"json number", json.Number("1610612739"), 1610612739, true},
		{"bytes", []byte("15"), 15, true},
		{"null string column", sql.NullString{}, 0, false},
		{"valid string column", sql.NullString{String: "9.0", Valid: true}, 9, true},
		{"valid int column", sql.NullInt64{Int64: 3, Valid: true}, 3, true},
		{"pointer", &text, 1610612738, true},
		{"unsupported", struct{}{}, 0, false},
	}
	for _, tc := range cases {
		got, ok := NormalizeTeamID(tc.raw)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("%s: NormalizeTeamID(%v)=(%d,%v) want=(%d,%v)", tc.name, tc.raw, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	cases := []struct {
		event Event
		want  string
	}{
		{Event{HomeDescription: "Jump Shot", NeutralDescription: "Timeout"}, "Jump Shot | Timeout"},
		{Event{VisitorDescription: "  Steal  "}, "Steal"},
		{Event{HomeDescription: "A", VisitorDescription: "B", NeutralDescription: "C"}, "A | B | C"},
		{Event{HomeDescription: "   "}, ""},
		{Event{}, ""},
	}
	for _, tc := range cases {
		if got := Describe(tc.event); got != tc.want {
			t.Fatalf("Describe(%+v)=%q want=%q", tc.event, got, tc.want)
		}
	}
}

func TestMatchesPhrase(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text   string
		phrase string
		want   bool
	}{
		{"Lane Violation", "violation", true},
		{"Violations reviewed", "violation", false},
		{"Offensive Charge Foul", "offensive charge", true},
		{"Offensively fouled", "offensive foul", false},
		{"James 3PT Jump Shot", "3pt", true},
		{"Def. 3PTS", "3pt", false},
		{"violations then a violation", "violation", true},
		{"anything", "", false},
	}
	for _, tc := range cases {
		if got := MatchesPhrase(tc.text, tc.phrase); got != tc.want {
			t.Fatalf("MatchesPhrase(%q, %q)=%v want=%v", tc.text, tc.phrase, got, tc.want)
		}
	}
}

func TestInferTeam(t *testing.T) {
	t.Parallel()

	game := Game{ID: "g", HomeTeamID: 1, VisitorTeamID: 2}

	team, ok := InferTeam(Event{HomeDescription: "REBOUND"}, game)
	assert.True(t, ok)
	assert.Equal(t, int64(1), team)

	team, ok = InferTeam(Event{VisitorDescription: "Turnover"}, game)
	assert.True(t, ok)
	assert.Equal(t, int64(2), team)

	_, ok = InferTeam(Event{HomeDescription: "Jump", VisitorDescription: "Ball"}, game)
	assert.False(t, ok)

	_, ok = InferTeam(Event{HomeDescription: "REBOUND"}, Game{})
	assert.False(t, ok)
}

func TestGame(t *testing.T) {
	t.Parallel()

	game := Game{HomeTeamID: 1, VisitorTeamID: 2}
	opponent, ok := game.Opponent(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), opponent)
	_, ok = game.Opponent(3)
	assert.False(t, ok)

	inferred := Game{ID: "g"}.InferTeams([]Event{
		{Type: EventPeriodStart},
		{TeamID: 7, HasTeam: true},
		{TeamID: 7, HasTeam: true},
		{TeamID: 9, HasTeam: true},
	})
	assert.Equal(t, int64(7), inferred.HomeTeamID)
	assert.Equal(t, int64(9), inferred.VisitorTeamID)
	assert.True(t, inferred.Complete())

	partial := Game{VisitorTeamID: 9}.InferTeams([]Event{{TeamID: 9, HasTeam: true}, {TeamID: 4, HasTeam: true}})
	assert.Equal(t, int64(9), partial.VisitorTeamID)
	assert.Equal(t, int64(4), partial.HomeTeamID)
}

func TestGame_InferTeamsKeepsKnownSlot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		game        Game
		events      []Event
		wantHome    int64
		wantVisitor int64
	}{
		{
			name:        "known visitor seen first",
			game:        Game{VisitorTeamID: 20},
			events:      []Event{{Type: EventMissedShot, TeamID: 20, HasTeam: true}, {Type: EventRebound, TeamID: 10, HasTeam: true}},
			wantHome:    10,
			wantVisitor: 20,
		},
		{
			name:        "known home seen second",
			game:        Game{HomeTeamID: 10},
			events:      []Event{{TeamID: 20, HasTeam: true}, {TeamID: 10, HasTeam: true}},
			wantHome:    10,
			wantVisitor: 20,
		},
		{
			name:        "duplicate ids keep home",
			game:        Game{HomeTeamID: 10, VisitorTeamID: 10},
			events:      []Event{{TeamID: 10, HasTeam: true}, {TeamID: 20, HasTeam: true}},
			wantHome:    10,
			wantVisitor: 20,
		},
		{
			name:        "single team stays incomplete",
			game:        Game{VisitorTeamID: 20},
			events:      []Event{{TeamID: 20, HasTeam: true}},
			wantHome:    0,
			wantVisitor: 20,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.game.InferTeams(tc.events)
			if got.HomeTeamID != tc.wantHome || got.VisitorTeamID != tc.wantVisitor {
				t.Fatalf("home=%d visitor=%d, want home=%d visitor=%d", got.HomeTeamID, got.VisitorTeamID, tc.wantHome, tc.wantVisitor)
			}
		})
	}

	game := Game{VisitorTeamID: 20}.InferTeams([]Event{{TeamID: 20, HasTeam: true}, {TeamID: 10, HasTeam: true}})
	team, ok := InferTeam(Event{HomeDescription: "Smith Turnover"}, game)
	require.True(t, ok)
	assert.Equal(t, int64(10), team)
}

func TestParseEventType(t *testing.T) {
	t.Parallel()

	cases := map[string]EventType{
		"made_shot":     EventMadeShot,
		"Missed Shot":   EventMissedShot,
		"free-throw":    EventFreeThrow,
		"REBOUND":       EventRebound,
		"end_of_period": EventPeriodEnd,
		"other":         EventUnclassified,
		"ejection":      EventUnclassified,
		"":              EventUnclassified,
	}
	for raw, want := range cases {
		if got := ParseEventType(raw); got != want {
			t.Fatalf("ParseEventType(%q)=%s want=%s", raw, got, want)
		}
	}
}

func clockOf(v float64) *float64 { return &v }

func TestParse(t *testing.T) {
	t.Parallel()

	event, err := Parse(RawEvent{
		ID:               10,
		GameID:           " 0022300001 ",
		Number:           4,
		EventType:        "made_shot",
		Period:           2,
		GameClockSeconds: clockOf(431.5),
		TeamID:           sql.NullString{},
		HomeDescription:  "Tatum 25' 3PT Jump Shot",
		Payload:          []byte(`{"team_id":"1610612738.0","shot_value":3,"score":"54 - 51"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "0022300001", event.GameID)
	assert.Equal(t, EventMadeShot, event.Type)
	assert.Equal(t, int64(1610612738), event.TeamID)
	assert.True(t, event.HasTeam)
	assert.Equal(t, 3, event.ShotValue)
	assert.True(t, event.Made)
	require.NotNil(t, event.Score)
	assert.Equal(t, Score{Home: 51, Visitor: 54}, *event.Score)

	ft, err := Parse(RawEvent{
		ID:               11,
		GameID:           "0022300001",
		EventType:        "free_throw",
		Period:           2,
		GameClockSeconds: clockOf(431.5),
		TeamID:           int64(1610612737),
		HomeDescription:  "MISS Brown Free Throw 1 of 2",
	})
	require.NoError(t, err)
	assert.False(t, ft.Made)

	jump, err := Parse(RawEvent{
		ID:               12,
		GameID:           "0022300001",
		EventType:        "jump_ball",
		Period:           1,
		GameClockSeconds: clockOf(720),
		TeamID:           "1610612737",
		Payload:          []byte(`{"possession_team_id":1610612738,"made":true}`),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1610612738), jump.PossessionTeamID)
	assert.True(t, jump.HasPossessionTeamID)
	assert.False(t, jump.Made)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	valid := RawEvent{ID: 1, GameID: "g", EventType: "rebound", Period: 1, GameClockSeconds: clockOf(10)}
	cases := map[string]func(r *RawEvent){
		"missing game":  func(r *RawEvent) { r.GameID = " " },
		"missing id":    func(r *RawEvent) { r.ID = 0 },
		"zero period":   func(r *RawEvent) { r.Period = 0 },
		"missing clock": func(r *RawEvent) { r.GameClockSeconds = nil },
		"bad payload":   func(r *RawEvent) { r.Payload = []byte(`{"team_id":`) },
	}
	for name, mutate := range cases {
		raw := valid
		mutate(&raw)
		_, err := Parse(raw)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !crerr.Is(err, ErrMalformedEvent) {
			t.Fatalf("%s: expected ErrMalformedEvent, got=%v", name, err)
		}
	}

	if _, err := Parse(valid); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}
}
