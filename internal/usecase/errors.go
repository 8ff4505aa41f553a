package usecase

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
)

var (
	ErrInvalidInput = crerr.New("invalid input")
	// ErrDataError marks bad input data. A malformed event is skipped and counted; a
	// game with no usable events or teams fails with this class.
	ErrDataError = pbp.ErrMalformedEvent
	// ErrAttributionAmbiguity is only ever counted; it exists so logs and metrics share a name.
	ErrAttributionAmbiguity = crerr.New("attribution ambiguity")
	ErrValidationFailure    = crerr.New("quality validation failed")
	ErrTransaction          = crerr.New("game transaction failed")
	// ErrFatalConfig is the only class that aborts a batch before any game runs.
	ErrFatalConfig = crerr.New("fatal configuration error")

	errDryRunRollback = crerr.New("dry run rollback")
)

// Failure kinds reported per game.
const (
	FailureDataError         = "DataError"
	FailureValidationFailure = "ValidationFailure"
	FailureTransactionError  = "TransactionError"
)

// failureKind maps a per-game error onto its reported class. Anything not
// marked otherwise happened inside the game's transaction.
func failureKind(err error) string {
	switch {
	case crerr.Is(err, ErrValidationFailure):
		return FailureValidationFailure
	case crerr.Is(err, ErrDataError):
		return FailureDataError
	default:
		return FailureTransactionError
	}
}
