package possession

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
)

const (
	StrategyTrustShooter = "trust_shooter"
	StrategyCloseReopen  = "close_reopen"
)

// MismatchStrategy decides how the detector reacts when an offense-only event
// (made or missed shot, turnover) names a team other than the tracked offense.
type MismatchStrategy interface {
	Name() string
	// ForceClose reports whether the open possession must be closed and reopened
	// for the event's team before the event is handled.
	ForceClose(event pbp.Event) bool
}

// TrustShooter never force-closes; the event's own team is used as evidence when
// it closes a possession, and the warning is only counted.
type TrustShooter struct{}

func (TrustShooter) Name() string                { return StrategyTrustShooter }
func (TrustShooter) ForceClose(_ pbp.Event) bool { return false }

// CloseReopen closes the open possession on every mismatch. It measurably degrades
// team balance (mean delta near 4 versus under 2) and is kept for experiments only.
type CloseReopen struct{}

func (CloseReopen) Name() string { return StrategyCloseReopen }

func (CloseReopen) ForceClose(event pbp.Event) bool {
	switch event.Type {
	case pbp.EventMadeShot, pbp.EventMissedShot, pbp.EventTurnover:
		return true
	default:
		return false
	}
}

// MismatchStrategyByName resolves a configured strategy name.
func MismatchStrategyByName(name string) (MismatchStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyTrustShooter:
		return TrustShooter{}, nil
	case StrategyCloseReopen:
		return CloseReopen{}, nil
	default:
		return nil, fmt.Errorf("unknown mismatch strategy %q: valid values are %s, %s", name, StrategyTrustShooter, StrategyCloseReopen)
	}
}
