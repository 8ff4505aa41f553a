package possession

import (
	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
)

// MaxPossessionPoints bounds the points credited to a single possession.
const MaxPossessionPoints = 3

// DetectorOptions customizes a Detector. Zero values select the defaults.
type DetectorOptions struct {
	Classifier EventClassifier
	Mismatch   MismatchStrategy
}

// Detector segments one game's ordered event stream into possessions.
// A Detector holds per-game state and must not be shared across games or goroutines.
type Detector struct {
	game       pbp.Game
	classifier EventClassifier
	mismatch   MismatchStrategy

	offense    int64
	hasOffense bool
	buffer     []pbp.Event
	points     int

	// boundary is set when the open possession was started by the close of the previous one.
	hasBoundary    bool
	boundaryPeriod int
	boundaryClock  float64

	pending []pbp.Event

	lastMissTeam int64
	hasLastMiss  bool
	prevMissTeam int64
	prevWasMiss  bool

	feedScore    *pbp.Score
	runningScore map[int64]int

	possessions []Possession
	diag        Diagnostics
}

func NewDetector(game pbp.Game, opts DetectorOptions) *Detector {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = NewKeywordClassifier(DefaultKeywords())
	}
	mismatch := opts.Mismatch
	if mismatch == nil {
		mismatch = TrustShooter{}
	}
	return &Detector{
		game:         game,
		classifier:   classifier,
		mismatch:     mismatch,
		runningScore: make(map[int64]int, 2),
		diag: Diagnostics{
			EndReasonCounts: make(map[EndReason]int, len(EndReasons())),
			TeamTallies:     make(map[int64]TeamTally, 2),
			HomeTeamID:      game.HomeTeamID,
			VisitorTeamID:   game.VisitorTeamID,
		},
	}
}

// Detect runs a fresh detector over events, which must be ordered by event number.
func Detect(game pbp.Game, events []pbp.Event, opts DetectorOptions) Result {
	detector := NewDetector(game, opts)
	for _, event := range events {
		detector.Feed(event)
	}
	return detector.Finish()
}

// Feed processes the next event of the stream.
func (d *Detector) Feed(event pbp.Event) {
	if event.Score != nil {
		score := *event.Score
		d.feedScore = &score
	}

	kept := true
	switch event.Type {
	case pbp.EventMadeShot:
		d.onMadeShot(event)
	case pbp.EventMissedShot:
		d.onMissedShot(event)
	case pbp.EventFreeThrow:
		d.onFreeThrow(event)
	case pbp.EventRebound:
		kept = d.onRebound(event)
	case pbp.EventTurnover:
		d.onTurnover(event)
	case pbp.EventFoul:
		d.onFoul(event)
	case pbp.EventViolation:
		d.onViolation(event)
	case pbp.EventJumpBall:
		d.onJumpBall(event)
	case pbp.EventPeriodEnd:
		d.onPeriodEnd(event)
	case pbp.EventUnclassified:
		if d.classifier.ClassifyViolation(event) != ViolationNone {
			d.onViolation(event)
		} else {
			d.appendOrHold(event)
		}
	default:
		d.appendOrHold(event)
	}
	if !kept {
		return
	}

	d.diag.ProcessedEventCount++
	d.prevWasMiss = false
	if team, ok := d.missBy(event); ok {
		d.prevWasMiss = true
		d.prevMissTeam = team
	}
}

// Finish closes any open possession, attaches trailing events and returns the result.
// The detector must not be fed afterwards.
func (d *Detector) Finish() Result {
	if d.hasOffense && len(d.buffer) > 0 {
		d.close(EndOfPeriod)
	}
	if len(d.pending) > 0 {
		if !d.attachToLast(d.pending) {
			for _, event := range d.pending {
				d.diag.DroppedEventIDs = append(d.diag.DroppedEventIDs, event.ID)
			}
			d.diag.UnattributedTailCount += len(d.pending)
		}
		d.pending = nil
	}
	if d.feedScore != nil {
		d.diag.FinalScore = &FinalScore{Home: d.feedScore.Home, Visitor: d.feedScore.Visitor}
	}
	return Result{
		GameID:      d.game.ID,
		Possessions: d.possessions,
		Diagnostics: d.diag,
	}
}

func (d *Detector) onMadeShot(event pbp.Event) {
	team, ok := d.resolveTeam(event)
	if !ok {
		d.diag.LowConfidenceCount++
		d.appendOrHold(event)
		return
	}
	value := shotValue(event)
	d.tally(team, func(t *TeamTally) {
		t.FieldGoalAttempts++
		t.Points += value
	})
	d.runningScore[team] += value

	d.takeOffense(event, team, true)
	d.append(event)
	d.points += value
	d.close(EndMadeShot)
	d.openAfter(event, team)
}

func (d *Detector) onMissedShot(event pbp.Event) {
	team, ok := d.resolveTeam(event)
	if !ok {
		d.diag.LowConfidenceCount++
		d.appendOrHold(event)
		return
	}
	d.tally(team, func(t *TeamTally) { t.FieldGoalAttempts++ })

	switch {
	case !d.hasOffense:
		d.openFresh(team)
	case d.offense != team:
		d.diag.TeamMismatchWarnings++
		if d.mismatch.ForceClose(event) {
			d.close(EndTeamMismatch)
			d.openFresh(team)
		}
	}
	d.append(event)
	d.lastMissTeam = team
	d.hasLastMiss = true
}

func (d *Detector) onFreeThrow(event pbp.Event) {
	team, ok := d.resolveTeam(event)
	if !ok {
		d.diag.LowConfidenceCount++
		d.diag.AmbiguousFreeThrows++
		d.appendOrHold(event)
		return
	}
	d.tally(team, func(t *TeamTally) {
		t.FreeThrowAttempts++
		if event.Made {
			t.Points++
		}
	})
	if event.Made {
		d.runningScore[team]++
	}

	attempt, counted := ParseFreeThrowAttempt(event)

	// Free throws awarded right after the shooter's own made basket belong to that basket,
	// together with the foul and stoppage rows logged in between.
	if d.continuesLastBasket(team) {
		last := &d.possessions[len(d.possessions)-1]
		for _, held := range d.buffer {
			last.EventIDs = append(last.EventIDs, held.ID)
		}
		d.buffer = nil
		last.EventIDs = append(last.EventIDs, event.ID)
		if event.Made {
			d.creditAttached(last, 1)
		}
		if !counted {
			d.diag.LowConfidenceCount++
			d.diag.AmbiguousFreeThrows++
		}
		if !event.Made {
			d.lastMissTeam = team
			d.hasLastMiss = true
		}
		return
	}

	if !d.hasOffense {
		d.openFresh(team)
	}

	if !counted {
		d.diag.LowConfidenceCount++
		d.diag.AmbiguousFreeThrows++
		d.append(event)
		if event.Made && d.offense == team {
			d.points++
		}
		return
	}

	if !attempt.Final() {
		d.append(event)
		if event.Made && d.offense == team {
			d.points++
		}
		return
	}

	if event.Made {
		d.takeOffense(event, team, true)
		d.append(event)
		d.points++
		d.close(EndMadeShot)
		d.openAfter(event, team)
		return
	}

	d.append(event)
	d.lastMissTeam = team
	d.hasLastMiss = true
}

// onRebound reports false when the event was dropped.
func (d *Detector) onRebound(event pbp.Event) bool {
	team, ok := d.resolveTeam(event)
	if !ok {
		if !d.prevWasMiss || len(d.buffer) == 0 {
			d.diag.DroppedEventIDs = append(d.diag.DroppedEventIDs, event.ID)
			d.diag.LowConfidenceCount++
			return false
		}
		team, ok = d.game.Opponent(d.prevMissTeam)
		if !ok {
			d.diag.DroppedEventIDs = append(d.diag.DroppedEventIDs, event.ID)
			d.diag.LowConfidenceCount++
			return false
		}
		d.diag.InferredTeamCount++
	}

	if !d.hasOffense {
		d.openFresh(team)
		d.append(event)
		d.hasLastMiss = false
		return true
	}

	missTeam := d.offense
	if d.hasLastMiss {
		missTeam = d.lastMissTeam
	}
	d.hasLastMiss = false

	if team == missTeam {
		d.tally(team, func(t *TeamTally) { t.OffensiveRebounds++ })
		if d.offense != team {
			if len(d.buffer) == 0 {
				d.offense = team
			} else {
				d.diag.TeamMismatchWarnings++
			}
		}
		d.append(event)
		return true
	}

	d.tally(team, func(t *TeamTally) { t.DefensiveRebounds++ })
	if len(d.buffer) == 0 {
		d.offense = team
		d.append(event)
		return true
	}
	if missTeam != d.offense {
		d.diag.TeamMismatchWarnings++
		d.offense = missTeam
	}
	d.append(event)
	d.close(EndDefensiveRebound)
	d.openOn(event, team)
	return true
}

func (d *Detector) onTurnover(event pbp.Event) {
	team, ok := d.resolveTeam(event)
	if !ok {
		d.diag.LowConfidenceCount++
		if !d.hasOffense {
			d.hold(event)
			return
		}
		team = d.offense
	}
	d.tally(team, func(t *TeamTally) { t.Turnovers++ })

	d.takeOffense(event, team, false)
	d.append(event)
	d.close(EndTurnover)
	d.openAfter(event, team)
}

func (d *Detector) onFoul(event pbp.Event) {
	if d.classifier.ClassifyFoul(event) != FoulOffensive {
		d.appendOrHold(event)
		return
	}
	team, ok := d.resolveTeam(event)
	if !ok {
		d.diag.LowConfidenceCount++
		d.appendOrHold(event)
		return
	}
	d.takeOffense(event, team, false)
	d.append(event)
	d.close(EndOffensiveFoul)
	d.openAfter(event, team)
}

func (d *Detector) onViolation(event pbp.Event) {
	if d.classifier.ClassifyViolation(event) != ViolationTurnover {
		d.appendOrHold(event)
		return
	}
	team, ok := d.resolveTeam(event)
	if !ok {
		d.diag.LowConfidenceCount++
		d.appendOrHold(event)
		return
	}

	d.takeOffense(event, team, false)
	d.append(event)
	d.close(EndViolation)
	d.openAfter(event, team)
}

func (d *Detector) onJumpBall(event pbp.Event) {
	winner, ok := event.PossessionTeamID, event.HasPossessionTeamID
	if !ok {
		winner, ok = event.Team()
	}
	if ok && d.game.Complete() && !d.game.Has(winner) {
		d.diag.TeamMismatchWarnings++
		ok = false
	}
	if !ok {
		d.diag.LowConfidenceCount++
		d.appendOrHold(event)
		return
	}

	if d.hasOffense && d.offense == winner {
		d.append(event)
		return
	}
	if d.hasOffense && len(d.buffer) > 0 {
		d.close(EndJumpBallRestart)
	}
	d.openFresh(winner)
	d.append(event)
	d.hasLastMiss = false
}

func (d *Detector) onPeriodEnd(event pbp.Event) {
	if d.hasOffense && len(d.buffer) > 0 {
		d.append(event)
		d.close(EndOfPeriod)
	} else {
		d.hold(event)
		if d.lastPossessionIn(event.Period) && d.attachToLast(d.pending) {
			d.pending = nil
		}
	}
	d.hasOffense = false
	d.hasBoundary = false
	d.hasLastMiss = false
	d.buffer = nil
	d.points = 0
}

// takeOffense reconciles the open possession with the team of an event that closes it.
// Scoring events relabel the possession to the scorer; other closing events keep the
// tracked offense and only count the disagreement.
func (d *Detector) takeOffense(event pbp.Event, team int64, relabel bool) {
	switch {
	case !d.hasOffense:
		d.openFresh(team)
	case d.offense != team:
		d.diag.TeamMismatchWarnings++
		if d.mismatch.ForceClose(event) {
			d.close(EndTeamMismatch)
			d.openFresh(team)
			return
		}
		if relabel {
			d.offense = team
		}
	}
}

func (d *Detector) close(reason EndReason) {
	if len(d.buffer) == 0 {
		return
	}
	last := d.buffer[len(d.buffer)-1]
	period := last.Period

	startClock := last.GameClockSeconds
	if d.hasBoundary && d.boundaryPeriod == period {
		startClock = d.boundaryClock
	} else {
		for _, event := range d.buffer {
			if event.Period == period {
				startClock = event.GameClockSeconds
				break
			}
		}
	}
	endClock := last.GameClockSeconds
	duration := startClock - endClock
	if duration < 0 {
		duration = 0
	}

	points := d.points
	if points > MaxPossessionPoints {
		points = MaxPossessionPoints
		d.diag.PointsCappedCount++
		d.diag.LowConfidenceCount++
	}

	defensive, _ := d.game.Opponent(d.offense)
	ids := make([]int64, 0, len(d.buffer))
	for _, event := range d.buffer {
		ids = append(ids, event.ID)
	}
	margin, known := d.margin()

	d.possessions = append(d.possessions, Possession{
		GameID:          d.game.ID,
		SequenceNumber:  len(d.possessions) + 1,
		Period:          period,
		StartClock:      startClock,
		EndClock:        endClock,
		DurationSeconds: duration,
		OffensiveTeamID: d.offense,
		DefensiveTeamID: defensive,
		EndReason:       reason,
		PointsScored:    points,
		EventIDs:        ids,
		IsClutch:        IsClutch(period, endClock, margin, known),
		IsOvertime:      IsOvertime(period),
	})
	d.diag.EndReasonCounts[reason]++
	d.tally(d.offense, func(t *TeamTally) { t.PossessionsCounted++ })

	d.buffer = nil
	d.points = 0
	d.hasBoundary = false
	d.hasLastMiss = false
}

// openAfter starts the opponent's possession at the clock of the closing event.
func (d *Detector) openAfter(event pbp.Event, closedTeam int64) {
	opponent, ok := d.game.Opponent(closedTeam)
	if !ok {
		d.hasOffense = false
		d.hasBoundary = false
		return
	}
	d.openOn(event, opponent)
}

func (d *Detector) openOn(event pbp.Event, team int64) {
	d.offense = team
	d.hasOffense = true
	d.hasBoundary = true
	d.boundaryPeriod = event.Period
	d.boundaryClock = event.GameClockSeconds
}

func (d *Detector) openFresh(team int64) {
	d.offense = team
	d.hasOffense = true
	d.hasBoundary = false
}

// append adds event to the open possession, prepending held events when it is empty.
func (d *Detector) append(event pbp.Event) {
	if len(d.buffer) == 0 && len(d.pending) > 0 {
		d.buffer = append(d.buffer, d.pending...)
		d.pending = nil
	}
	d.buffer = append(d.buffer, event)
}

func (d *Detector) appendOrHold(event pbp.Event) {
	if d.hasOffense {
		d.append(event)
		return
	}
	d.hold(event)
}

func (d *Detector) hold(event pbp.Event) {
	d.pending = append(d.pending, event)
}

func (d *Detector) attachToLast(events []pbp.Event) bool {
	if len(d.possessions) == 0 {
		return false
	}
	last := &d.possessions[len(d.possessions)-1]
	for _, event := range events {
		last.EventIDs = append(last.EventIDs, event.ID)
	}
	return true
}

func (d *Detector) lastPossessionIn(period int) bool {
	return len(d.possessions) > 0 && d.possessions[len(d.possessions)-1].Period == period
}

// continuesLastBasket reports an and-one style free throw: the open possession belongs to
// the opponent of team, holds nothing but stoppage rows, and team's basket closed the
// previous possession.
func (d *Detector) continuesLastBasket(team int64) bool {
	if !d.hasOffense || d.offense == team || len(d.pending) > 0 || len(d.possessions) == 0 {
		return false
	}
	for _, held := range d.buffer {
		switch held.Type {
		case pbp.EventFoul, pbp.EventTimeout, pbp.EventSubstitution, pbp.EventUnclassified:
		default:
			return false
		}
	}
	last := d.possessions[len(d.possessions)-1]
	return last.EndReason == EndMadeShot && last.OffensiveTeamID == team
}

func (d *Detector) creditAttached(p *Possession, value int) {
	if p.PointsScored+value > MaxPossessionPoints {
		d.diag.PointsCappedCount++
		d.diag.LowConfidenceCount++
		p.PointsScored = MaxPossessionPoints
		return
	}
	p.PointsScored += value
}

// resolveTeam returns the event's team, falling back to the populated description side.
// A team that does not play in the game is treated as unknown.
func (d *Detector) resolveTeam(event pbp.Event) (int64, bool) {
	if team, ok := event.Team(); ok {
		if d.game.Complete() && !d.game.Has(team) {
			d.diag.TeamMismatchWarnings++
			return 0, false
		}
		return team, true
	}
	team, ok := pbp.InferTeam(event, d.game)
	if ok {
		d.diag.InferredTeamCount++
	}
	return team, ok
}

func (d *Detector) missBy(event pbp.Event) (int64, bool) {
	switch {
	case event.Type == pbp.EventMissedShot:
	case event.Type == pbp.EventFreeThrow && !event.Made:
	default:
		return 0, false
	}
	if team, ok := event.Team(); ok {
		return team, true
	}
	return pbp.InferTeam(event, d.game)
}

func (d *Detector) tally(team int64, fn func(*TeamTally)) {
	if team == 0 {
		return
	}
	current := d.diag.TeamTallies[team]
	fn(&current)
	d.diag.TeamTallies[team] = current
}

// margin prefers the feed's own score and falls back to the points seen so far.
func (d *Detector) margin() (int, bool) {
	if d.feedScore != nil {
		return d.feedScore.Home - d.feedScore.Visitor, true
	}
	if !d.game.Complete() {
		return 0, false
	}
	return d.runningScore[d.game.HomeTeamID] - d.runningScore[d.game.VisitorTeamID], true
}

func shotValue(event pbp.Event) int {
	if event.ShotValue == 2 || event.ShotValue == 3 {
		return event.ShotValue
	}
	if pbp.MatchesPhrase(pbp.Describe(event), "3pt") {
		return 3
	}
	return 2
}
