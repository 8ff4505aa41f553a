package possession

import (
	"math/rand"

	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
)

const (
	testGameID       = "0022300001"
	teamA      int64 = 1610612737
	teamB      int64 = 1610612738
)

var testGame = pbp.Game{ID: testGameID, HomeTeamID: teamA, VisitorTeamID: teamB}

type eventOption func(*pbp.Event)

func shotValueOf(v int) eventOption { return func(e *pbp.Event) { e.ShotValue = v } }
func madeFT() eventOption           { return func(e *pbp.Event) { e.Made = true } }
func atClock(c float64) eventOption { return func(e *pbp.Event) { e.GameClockSeconds = c } }
func wonBy(team int64) eventOption {
	return func(e *pbp.Event) {
		e.PossessionTeamID = team
		e.HasPossessionTeamID = true
	}
}
func scoreOf(home, visitor int) eventOption {
	return func(e *pbp.Event) { e.Score = &pbp.Score{Home: home, Visitor: visitor} }
}
func homeSide(description string) eventOption {
	return func(e *pbp.Event) {
		e.NeutralDescription = ""
		e.HomeDescription = description
	}
}
func visitorSide(description string) eventOption {
	return func(e *pbp.Event) {
		e.NeutralDescription = ""
		e.VisitorDescription = description
	}
}

// streamBuilder produces ordered events, spending five seconds of clock per event.
type streamBuilder struct {
	period int
	clock  float64
	events []pbp.Event
}

func newStream() *streamBuilder {
	return &streamBuilder{period: 1, clock: 720}
}

func (b *streamBuilder) inPeriod(period int, clock float64) *streamBuilder {
	b.period = period
	b.clock = clock
	return b
}

func (b *streamBuilder) add(eventType pbp.EventType, team int64, description string, opts ...eventOption) *streamBuilder {
	b.clock -= 5
	if b.clock < 0 {
		b.clock = 0
	}
	event := pbp.Event{
		ID:                 int64(len(b.events) + 1),
		GameID:             testGameID,
		Number:             len(b.events) + 1,
		Type:               eventType,
		Period:             b.period,
		GameClockSeconds:   b.clock,
		TeamID:             team,
		HasTeam:            team != 0,
		NeutralDescription: description,
	}
	for _, opt := range opts {
		opt(&event)
	}
	b.clock = event.GameClockSeconds
	b.events = append(b.events, event)
	return b
}

func (b *streamBuilder) build() []pbp.Event {
	return b.events
}

// generateGame simulates a clean four-period game whose possessions alternate and last
// between 4 and 16 seconds.
func generateGame(rng *rand.Rand, gameID string, firstID int64) (pbp.Game, []pbp.Event) {
	game := pbp.Game{ID: gameID, HomeTeamID: teamA, VisitorTeamID: teamB}
	events := make([]pbp.Event, 0, 512)
	nextID := firstID
	add := func(period int, clock float64, eventType pbp.EventType, team int64, description string, opts ...eventOption) {
		event := pbp.Event{
			ID:                 nextID,
			GameID:             gameID,
			Number:             len(events) + 1,
			Type:               eventType,
			Period:             period,
			GameClockSeconds:   clock,
			TeamID:             team,
			HasTeam:            team != 0,
			NeutralDescription: description,
		}
		for _, opt := range opts {
			opt(&event)
		}
		nextID++
		events = append(events, event)
	}

	type step struct {
		eventType   pbp.EventType
		team        int64
		description string
		opts        []eventOption
	}

	for period := 1; period <= 4; period++ {
		offense, defense := teamA, teamB
		if period%2 == 0 {
			offense, defense = teamB, teamA
		}
		clock := 720.0
		add(period, clock, pbp.EventPeriodStart, 0, "Start of period")
		add(period, clock, pbp.EventJumpBall, offense, "Jump Ball", wonBy(offense))

		for {
			length := 4 + rng.Float64()*12
			if clock-length <= 0 {
				break
			}
			var steps []step
			switch r := rng.Float64(); {
			case r < 0.45:
				value := 2
				if rng.Float64() < 0.35 {
					value = 3
				}
				steps = []step{{pbp.EventMadeShot, offense, "Jump Shot", []eventOption{shotValueOf(value)}}}
			case r < 0.60:
				steps = []step{{pbp.EventTurnover, offense, "Bad Pass Turnover", nil}}
			case r < 0.80:
				rebounder := defense
				if rng.Float64() < 0.25 {
					rebounder = 0
				}
				steps = []step{
					{pbp.EventMissedShot, offense, "MISS Layup", nil},
					{pbp.EventRebound, rebounder, "Rebound", nil},
				}
			case r < 0.90:
				steps = []step{
					{pbp.EventMissedShot, offense, "MISS Jump Shot", nil},
					{pbp.EventRebound, offense, "Offensive Rebound", nil},
					{pbp.EventMadeShot, offense, "Putback Layup", []eventOption{shotValueOf(2)}},
				}
			default:
				steps = []step{
					{pbp.EventFoul, defense, "Shooting Foul", nil},
					{pbp.EventFreeThrow, offense, "Free Throw 1 of 2", []eventOption{madeFT()}},
					{pbp.EventFreeThrow, offense, "Free Throw 2 of 2", []eventOption{madeFT()}},
				}
			}
			for k, s := range steps {
				add(period, clock-length*float64(k+1)/float64(len(steps)), s.eventType, s.team, s.description, s.opts...)
			}
			clock -= length
			offense, defense = defense, offense
		}
		add(period, 0, pbp.EventPeriodEnd, 0, "End of period")
	}
	return game, events
}
