package possession

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
)

var ErrGameNotFound = crerr.New("game not found")

// GameTx is the storage view of one game inside its transaction.
type GameTx interface {
	// GetGame returns ErrGameNotFound when the games table has no row.
	GetGame(ctx context.Context, gameID string) (pbp.Game, error)
	// ListGameEvents returns the game's rows in feed order (event_num, then id).
	ListGameEvents(ctx context.Context, gameID string) ([]pbp.RawEvent, error)
	// ReplaceGamePossessions deletes every stored possession of the game and
	// inserts the given ones, then upserts the report.
	ReplaceGamePossessions(ctx context.Context, gameID string, possessions []Possession, report QualityReport) error
}

// Repository owns the per-game transaction boundary.
type Repository interface {
	ListGameIDs(ctx context.Context) ([]string, error)
	// WithinGameTx commits when fn returns nil and rolls back otherwise, including on panic.
	WithinGameTx(ctx context.Context, gameID string, fn func(ctx context.Context, tx GameTx) error) error
	ListGamePossessions(ctx context.Context, gameID string) ([]Possession, error)
	GetQualityReport(ctx context.Context, gameID string) (QualityReport, error)
}
