package possession

import (
	"fmt"
	"math"
	"sort"
)

const (
	CheckDeanOliver           = "dean_oliver"
	CheckTeamBalance          = "team_balance"
	CheckDurationBand         = "duration_band"
	CheckPointsReconciliation = "points_reconciliation"
)

// ValidatorConfig holds the quality thresholds. Durations are in seconds.
type ValidatorConfig struct {
	TeamBalanceThreshold int
	DurationMinSeconds   float64
	DurationMaxSeconds   float64
	DeanOliverTolerance  float64
	PointsTolerance      float64
}

func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		TeamBalanceThreshold: 2,
		DurationMinSeconds:   8,
		DurationMaxSeconds:   14,
		DeanOliverTolerance:  0.10,
		PointsTolerance:      0.10,
	}
}

// CheckResult is the outcome of one quality check. Skipped checks count as passed.
type CheckResult struct {
	Name    string             `json:"name"`
	Passed  bool               `json:"passed"`
	Skipped bool               `json:"skipped,omitempty"`
	Detail  string             `json:"detail"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// QualityMetrics are the raw numbers behind the checks.
type QualityMetrics struct {
	PossessionCount       int            `json:"possession_count"`
	HomePossessions       int            `json:"home_possessions"`
	VisitorPossessions    int            `json:"visitor_possessions"`
	TeamBalanceDelta      int            `json:"team_balance_delta"`
	MeanDurationSeconds   float64        `json:"mean_duration_seconds"`
	MedianDurationSeconds float64        `json:"median_duration_seconds"`
	HomeDeanOliver        float64        `json:"home_dean_oliver"`
	VisitorDeanOliver     float64        `json:"visitor_dean_oliver"`
	DetectorPoints        int            `json:"detector_points"`
	FeedPoints            *int           `json:"feed_points,omitempty"`
	EndReasonCounts       map[string]int `json:"end_reason_counts"`
	LowConfidenceCount    int            `json:"low_confidence_count"`
	TeamMismatchWarnings  int            `json:"team_mismatch_warnings"`
	DroppedEventCount     int            `json:"dropped_event_count"`
}

// QualityReport summarizes one game's checks. A failing report is still returned and stored.
type QualityReport struct {
	GameID  string         `json:"game_id"`
	Passed  bool           `json:"passed"`
	Checks  []CheckResult  `json:"checks"`
	Metrics QualityMetrics `json:"metrics"`
}

// FailedChecks lists the names of failed, non-skipped checks.
func (r QualityReport) FailedChecks() []string {
	out := make([]string, 0, len(r.Checks))
	for _, check := range r.Checks {
		if !check.Passed && !check.Skipped {
			out = append(out, check.Name)
		}
	}
	return out
}

// Check returns the named check.
func (r QualityReport) Check(name string) (CheckResult, bool) {
	for _, check := range r.Checks {
		if check.Name == name {
			return check, true
		}
	}
	return CheckResult{}, false
}

type Validator struct {
	cfg ValidatorConfig
}

func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate runs every check over a detector result.
func (v *Validator) Validate(result Result) QualityReport {
	diag := result.Diagnostics
	metrics := QualityMetrics{
		PossessionCount:      len(result.Possessions),
		EndReasonCounts:      make(map[string]int, len(diag.EndReasonCounts)),
		LowConfidenceCount:   diag.LowConfidenceCount,
		TeamMismatchWarnings: diag.TeamMismatchWarnings,
		DroppedEventCount:    len(diag.DroppedEventIDs),
	}
	for reason, count := range diag.EndReasonCounts {
		metrics.EndReasonCounts[string(reason)] = count
	}

	durations := make([]float64, 0, len(result.Possessions))
	for _, p := range result.Possessions {
		switch p.OffensiveTeamID {
		case diag.HomeTeamID:
			metrics.HomePossessions++
		case diag.VisitorTeamID:
			metrics.VisitorPossessions++
		}
		metrics.DetectorPoints += p.PointsScored
		durations = append(durations, p.DurationSeconds)
	}
	metrics.TeamBalanceDelta = absInt(metrics.HomePossessions - metrics.VisitorPossessions)
	metrics.MeanDurationSeconds, metrics.MedianDurationSeconds = meanMedian(durations)
	metrics.HomeDeanOliver = DeanOliverEstimate(diag.TeamTallies[diag.HomeTeamID])
	metrics.VisitorDeanOliver = DeanOliverEstimate(diag.TeamTallies[diag.VisitorTeamID])
	if diag.FinalScore != nil {
		feed := diag.FinalScore.Home + diag.FinalScore.Visitor
		metrics.FeedPoints = &feed
	}

	checks := []CheckResult{
		v.checkDeanOliver(metrics),
		v.checkTeamBalance(metrics),
		v.checkDurationBand(metrics),
		v.checkPoints(metrics),
	}
	passed := true
	for _, check := range checks {
		if !check.Passed && !check.Skipped {
			passed = false
		}
	}
	return QualityReport{
		GameID:  result.GameID,
		Passed:  passed,
		Checks:  checks,
		Metrics: metrics,
	}
}

// DeanOliverEstimate is FGA - OREB + TOV + 0.4*FTA.
func DeanOliverEstimate(t TeamTally) float64 {
	return float64(t.FieldGoalAttempts-t.OffensiveRebounds+t.Turnovers) + 0.4*float64(t.FreeThrowAttempts)
}

func (v *Validator) checkDeanOliver(m QualityMetrics) CheckResult {
	homeDelta := relativeDelta(float64(m.HomePossessions), m.HomeDeanOliver)
	visitorDelta := relativeDelta(float64(m.VisitorPossessions), m.VisitorDeanOliver)
	passed := homeDelta <= v.cfg.DeanOliverTolerance && visitorDelta <= v.cfg.DeanOliverTolerance
	return CheckResult{
		Name:   CheckDeanOliver,
		Passed: passed,
		Detail: fmt.Sprintf("home %d vs %.1f estimated, visitor %d vs %.1f estimated (tolerance %.0f%%)",
			m.HomePossessions, m.HomeDeanOliver, m.VisitorPossessions, m.VisitorDeanOliver, v.cfg.DeanOliverTolerance*100),
		Metrics: map[string]float64{
			"home_relative_delta":    homeDelta,
			"visitor_relative_delta": visitorDelta,
		},
	}
}

func (v *Validator) checkTeamBalance(m QualityMetrics) CheckResult {
	return CheckResult{
		Name:    CheckTeamBalance,
		Passed:  m.TeamBalanceDelta <= v.cfg.TeamBalanceThreshold,
		Detail:  fmt.Sprintf("delta %d (threshold %d)", m.TeamBalanceDelta, v.cfg.TeamBalanceThreshold),
		Metrics: map[string]float64{"delta": float64(m.TeamBalanceDelta)},
	}
}

func (v *Validator) checkDurationBand(m QualityMetrics) CheckResult {
	if m.PossessionCount == 0 {
		return CheckResult{
			Name:   CheckDurationBand,
			Passed: false,
			Detail: "no possessions",
		}
	}
	return CheckResult{
		Name:   CheckDurationBand,
		Passed: m.MeanDurationSeconds >= v.cfg.DurationMinSeconds && m.MeanDurationSeconds <= v.cfg.DurationMaxSeconds,
		Detail: fmt.Sprintf("mean %.2fs, median %.2fs (band %.0f-%.0fs)",
			m.MeanDurationSeconds, m.MedianDurationSeconds, v.cfg.DurationMinSeconds, v.cfg.DurationMaxSeconds),
		Metrics: map[string]float64{
			"mean_seconds":   m.MeanDurationSeconds,
			"median_seconds": m.MedianDurationSeconds,
		},
	}
}

func (v *Validator) checkPoints(m QualityMetrics) CheckResult {
	if m.FeedPoints == nil {
		return CheckResult{
			Name:    CheckPointsReconciliation,
			Passed:  true,
			Skipped: true,
			Detail:  "feed carries no score",
		}
	}
	delta := relativeDelta(float64(m.DetectorPoints), float64(*m.FeedPoints))
	return CheckResult{
		Name:    CheckPointsReconciliation,
		Passed:  delta <= v.cfg.PointsTolerance,
		Detail:  fmt.Sprintf("detector %d vs feed %d points", m.DetectorPoints, *m.FeedPoints),
		Metrics: map[string]float64{"relative_delta": delta},
	}
}

// relativeDelta is |observed-expected|/expected. A zero expectation only matches zero
// and otherwise reports a full 100% miss, keeping the value JSON encodable.
func relativeDelta(observed, expected float64) float64 {
	if expected == 0 {
		if observed == 0 {
			return 0
		}
		return 1
	}
	return math.Abs(observed-expected) / math.Abs(expected)
}

func meanMedian(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var sum float64
	for _, value := range sorted {
		sum += value
	}
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return sum / float64(len(sorted)), median
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
