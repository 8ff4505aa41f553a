package postgres

import (
	"database/sql"

	"github.com/lib/pq"
)

type gameTableModel struct {
	GameID        string         `db:"game_id"`
	HomeTeamID    sql.NullString `db:"home_team_id"`
	VisitorTeamID sql.NullString `db:"visitor_team_id"`
}

type pbpEventTableModel struct {
	ID                 int64           `db:"id"`
	GameID             string          `db:"game_id"`
	EventNum           int             `db:"event_num"`
	EventType          sql.NullString  `db:"event_type"`
	Period             int             `db:"period"`
	GameClockSeconds   sql.NullFloat64 `db:"game_clock_seconds"`
	TeamID             sql.NullString  `db:"team_id"`
	HomeDescription    sql.NullString  `db:"home_description"`
	VisitorDescription sql.NullString  `db:"visitor_description"`
	NeutralDescription sql.NullString  `db:"neutral_description"`
	Payload            []byte          `db:"payload"`
}

type possessionTableModel struct {
	GameID          string        `db:"game_id"`
	SequenceNumber  int           `db:"sequence_number"`
	Period          int           `db:"period"`
	StartClock      float64       `db:"start_clock"`
	EndClock        float64       `db:"end_clock"`
	DurationSeconds float64       `db:"duration_seconds"`
	OffensiveTeamID int64         `db:"offensive_team_id"`
	DefensiveTeamID int64         `db:"defensive_team_id"`
	EndReason       string        `db:"end_reason"`
	PointsScored    int           `db:"points_scored"`
	EventIDs        pq.Int64Array `db:"event_ids"`
	IsClutch        bool          `db:"is_clutch"`
	IsOvertime      bool          `db:"is_overtime"`
}

type qualityReportTableModel struct {
	GameID  string `db:"game_id"`
	Passed  bool   `db:"passed"`
	Checks  string `db:"checks"`
	Metrics string `db:"metrics"`
}
