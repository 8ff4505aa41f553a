package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
)

// PossessionStore is an in-process event source and possession store. Each
// game transaction stages its writes and applies them only on commit.
type PossessionStore struct {
	mu          sync.RWMutex
	games       map[string]pbp.Game
	events      map[string][]pbp.RawEvent
	possessions map[string][]possession.Possession
	reports     map[string]possession.QualityReport

	// gameLocks serializes transactions on the same game, like the advisory lock in postgres.
	gameLocks sync.Map
}

func NewPossessionStore(games []pbp.Game, events []pbp.RawEvent) *PossessionStore {
	s := &PossessionStore{
		games:       make(map[string]pbp.Game, len(games)),
		events:      make(map[string][]pbp.RawEvent),
		possessions: make(map[string][]possession.Possession),
		reports:     make(map[string]possession.QualityReport),
	}
	for _, game := range games {
		s.games[game.ID] = game
	}
	for _, event := range events {
		s.events[event.GameID] = append(s.events[event.GameID], event)
	}
	for gameID := range s.events {
		items := s.events[gameID]
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Number != items[j].Number {
				return items[i].Number < items[j].Number
			}
			return items[i].ID < items[j].ID
		})
	}
	return s
}

// ListGameIDs returns every game that has events, sorted.
func (s *PossessionStore) ListGameIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.events))
	for gameID := range s.events {
		out = append(out, gameID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *PossessionStore) WithinGameTx(ctx context.Context, gameID string, fn func(ctx context.Context, tx possession.GameTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	gameLock := lock.(*sync.Mutex)
	gameLock.Lock()
	defer gameLock.Unlock()

	tx := &possessionTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *PossessionStore) ListGamePossessions(_ context.Context, gameID string) ([]possession.Possession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clonePossessions(s.possessions[gameID]), nil
}

func (s *PossessionStore) GetQualityReport(_ context.Context, gameID string) (possession.QualityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[gameID]
	if !ok {
		return possession.QualityReport{}, possession.ErrGameNotFound
	}
	return report, nil
}

type stagedWrite struct {
	gameID      string
	possessions []possession.Possession
	report      possession.QualityReport
}

type possessionTx struct {
	store  *PossessionStore
	staged []stagedWrite
}

func (t *possessionTx) GetGame(_ context.Context, gameID string) (pbp.Game, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	game, ok := t.store.games[gameID]
	if !ok {
		return pbp.Game{}, possession.ErrGameNotFound
	}
	return game, nil
}

func (t *possessionTx) ListGameEvents(_ context.Context, gameID string) ([]pbp.RawEvent, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	items := t.store.events[gameID]
	out := make([]pbp.RawEvent, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (t *possessionTx) ReplaceGamePossessions(_ context.Context, gameID string, possessions []possession.Possession, report possession.QualityReport) error {
	t.staged = append(t.staged, stagedWrite{
		gameID:      gameID,
		possessions: clonePossessions(possessions),
		report:      report,
	})
	return nil
}

func (t *possessionTx) commit() {
	if len(t.staged) == 0 {
		return
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for _, write := range t.staged {
		t.store.possessions[write.gameID] = write.possessions
		t.store.reports[write.gameID] = write.report
	}
}

func clonePossessions(items []possession.Possession) []possession.Possession {
	out := make([]possession.Possession, 0, len(items))
	for _, item := range items {
		item.EventIDs = append([]int64(nil), item.EventIDs...)
		out = append(out, item)
	}
	return out
}
