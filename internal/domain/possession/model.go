package possession

import "time"

// EndReason is the categorical cause closing a possession.
type EndReason string

const (
	EndMadeShot         EndReason = "made_shot"
	EndDefensiveRebound EndReason = "defensive_rebound"
	EndTurnover         EndReason = "turnover"
	EndOffensiveFoul    EndReason = "offensive_foul"
	EndViolation        EndReason = "violation"
	EndOfPeriod         EndReason = "end_of_period"
	EndJumpBallRestart  EndReason = "jump_ball_restart"
	// EndTeamMismatch is only produced by the close_reopen mismatch strategy.
	EndTeamMismatch EndReason = "team_mismatch"
)

// EndReasons lists the reasons in reporting order.
func EndReasons() []EndReason {
	return []EndReason{
		EndMadeShot,
		EndDefensiveRebound,
		EndTurnover,
		EndOffensiveFoul,
		EndViolation,
		EndOfPeriod,
		EndJumpBallRestart,
		EndTeamMismatch,
	}
}

// Possession is one maximal run of events under a single team's control.
type Possession struct {
	GameID          string
	SequenceNumber  int
	Period          int
	StartClock      float64
	EndClock        float64
	DurationSeconds float64
	OffensiveTeamID int64
	DefensiveTeamID int64
	EndReason       EndReason
	PointsScored    int
	EventIDs        []int64
	IsClutch        bool
	IsOvertime      bool
}

// TeamTally holds per-team box counts observed while detecting possessions.
type TeamTally struct {
	FieldGoalAttempts  int
	FreeThrowAttempts  int
	OffensiveRebounds  int
	DefensiveRebounds  int
	Turnovers          int
	Points             int
	PossessionsCounted int
}

// Diagnostics are the per-game counters the detector emits alongside possessions.
type Diagnostics struct {
	EndReasonCounts       map[EndReason]int
	LowConfidenceCount    int
	TeamMismatchWarnings  int
	DroppedEventIDs       []int64
	MalformedEventIDs     []int64
	PointsCappedCount     int
	AmbiguousFreeThrows   int
	InferredTeamCount     int
	FinalScore            *FinalScore
	TeamTallies           map[int64]TeamTally
	HomeTeamID            int64
	VisitorTeamID         int64
	ProcessedEventCount   int
	UnattributedTailCount int
}

// FinalScore is the last score seen in the feed.
type FinalScore struct {
	Home    int
	Visitor int
}

// Result is the detector output for one game.
type Result struct {
	GameID      string
	Possessions []Possession
	Diagnostics Diagnostics
}

// GameProcessingResult is the extractor's per-game record.
type GameProcessingResult struct {
	GameID               string
	Possessions          []Possession
	Success              bool
	Persisted            bool
	FailureKind          string
	FailureReason        string
	EndReasonCounts      map[EndReason]int
	LowConfidenceCount   int
	TeamMismatchWarnings int
	DroppedEventCount    int
	MalformedEventCount  int
	Report               *QualityReport
	Duration             time.Duration
}
