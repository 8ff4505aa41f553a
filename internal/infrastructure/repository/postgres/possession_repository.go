package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
	qb "github.com/riskibarqy/possession-tracker/internal/platform/querybuilder"
)

const (
	gamesTable          = "games"
	pbpEventsTable      = "pbp_events"
	possessionsTable    = "game_possessions"
	qualityReportsTable = "possession_quality_reports"
)

var possessionColumnCount = len(qb.Columns(possessionTableModel{}))

type PossessionRepository struct {
	db *sqlx.DB
}

func NewPossessionRepository(db *sqlx.DB) *PossessionRepository {
	return &PossessionRepository{db: db}
}

func (r *PossessionRepository) ListGameIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("DISTINCT game_id").From(pbpEventsTable).OrderBy("game_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select game ids query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select game ids: %w", err)
	}
	return ids, nil
}

// WithinGameTx runs fn in one transaction holding the game's advisory lock, so two
// extractors never interleave writes for the same game. Any error from fn rolls back.
func (r *PossessionRepository) WithinGameTx(ctx context.Context, gameID string, fn func(ctx context.Context, tx possession.GameTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx game=%s: %w", gameID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey(gameID)); err != nil {
		return fmt.Errorf("lock game=%s: %w", gameID, err)
	}
	if err := fn(ctx, &gameTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx game=%s: %w", gameID, err)
	}
	return nil
}

func (r *PossessionRepository) ListGamePossessions(ctx context.Context, gameID string) ([]possession.Possession, error) {
	query, args, err := qb.Select(qb.Columns(possessionTableModel{})...).
		From(possessionsTable).
		Where(qb.Eq("game_id", gameID)).
		OrderBy("sequence_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select possessions query: %w", err)
	}

	var rows []possessionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select possessions game=%s: %w", gameID, err)
	}

	out := make([]possession.Possession, 0, len(rows))
	for _, row := range rows {
		out = append(out, possession.Possession{
			GameID:          row.GameID,
			SequenceNumber:  row.SequenceNumber,
			Period:          row.Period,
			StartClock:      row.StartClock,
			EndClock:        row.EndClock,
			DurationSeconds: row.DurationSeconds,
			OffensiveTeamID: row.OffensiveTeamID,
			DefensiveTeamID: row.DefensiveTeamID,
			EndReason:       possession.EndReason(row.EndReason),
			PointsScored:    row.PointsScored,
			EventIDs:        []int64(row.EventIDs),
			IsClutch:        row.IsClutch,
			IsOvertime:      row.IsOvertime,
		})
	}
	return out, nil
}

func (r *PossessionRepository) GetQualityReport(ctx context.Context, gameID string) (possession.QualityReport, error) {
	query, args, err := qb.Select(qb.Columns(qualityReportTableModel{})...).
		From(qualityReportsTable).
		Where(qb.Eq("game_id", gameID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return possession.QualityReport{}, fmt.Errorf("build select quality report query: %w", err)
	}

	var row qualityReportTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return possession.QualityReport{}, possession.ErrGameNotFound
		}
		return possession.QualityReport{}, fmt.Errorf("get quality report game=%s: %w", gameID, err)
	}

	report := possession.QualityReport{GameID: row.GameID, Passed: row.Passed}
	if err := sonic.UnmarshalString(row.Checks, &report.Checks); err != nil {
		return possession.QualityReport{}, fmt.Errorf("decode quality checks game=%s: %w", gameID, err)
	}
	if err := sonic.UnmarshalString(row.Metrics, &report.Metrics); err != nil {
		return possession.QualityReport{}, fmt.Errorf("decode quality metrics game=%s: %w", gameID, err)
	}
	return report, nil
}

type gameTx struct {
	tx *sqlx.Tx
}

func (t *gameTx) GetGame(ctx context.Context, gameID string) (pbp.Game, error) {
	query, args, err := qb.Select(qb.Columns(gameTableModel{})...).
		From(gamesTable).
		Where(qb.Eq("game_id", gameID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return pbp.Game{}, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := t.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pbp.Game{}, possession.ErrGameNotFound
		}
		return pbp.Game{}, fmt.Errorf("get game=%s: %w", gameID, err)
	}

	game := pbp.Game{ID: row.GameID}
	game.HomeTeamID, _ = pbp.NormalizeTeamID(nullStringValue(row.HomeTeamID))
	game.VisitorTeamID, _ = pbp.NormalizeTeamID(nullStringValue(row.VisitorTeamID))
	return game, nil
}

func (t *gameTx) ListGameEvents(ctx context.Context, gameID string) ([]pbp.RawEvent, error) {
	query, args, err := qb.Select(qb.Columns(pbpEventTableModel{})...).
		From(pbpEventsTable).
		Where(qb.Eq("game_id", gameID)).
		OrderBy("event_num", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select pbp events query: %w", err)
	}

	var rows []pbpEventTableModel
	if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pbp events game=%s: %w", gameID, err)
	}

	out := make([]pbp.RawEvent, 0, len(rows))
	for _, row := range rows {
		event := pbp.RawEvent{
			ID:                 row.ID,
			GameID:             row.GameID,
			Number:             row.EventNum,
			EventType:          row.EventType.String,
			Period:             row.Period,
			TeamID:             nullStringValue(row.TeamID),
			HomeDescription:    row.HomeDescription.String,
			VisitorDescription: row.VisitorDescription.String,
			NeutralDescription: row.NeutralDescription.String,
			Payload:            row.Payload,
		}
		if row.GameClockSeconds.Valid {
			clock := row.GameClockSeconds.Float64
			event.GameClockSeconds = &clock
		}
		out = append(out, event)
	}
	return out, nil
}

// ReplaceGamePossessions deletes the game's rows and inserts the new set in chunks that
// stay under the bind parameter limit, then upserts the report.
func (t *gameTx) ReplaceGamePossessions(ctx context.Context, gameID string, items []possession.Possession, report possession.QualityReport) error {
	query, args, err := qb.DeleteFrom(possessionsTable).Where(qb.Eq("game_id", gameID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete possessions query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete possessions game=%s: %w", gameID, err)
	}

	rows := make([]possessionTableModel, 0, len(items))
	for _, item := range items {
		rows = append(rows, possessionTableModel{
			GameID:          gameID,
			SequenceNumber:  item.SequenceNumber,
			Period:          item.Period,
			StartClock:      item.StartClock,
			EndClock:        item.EndClock,
			DurationSeconds: item.DurationSeconds,
			OffensiveTeamID: item.OffensiveTeamID,
			DefensiveTeamID: item.DefensiveTeamID,
			EndReason:       string(item.EndReason),
			PointsScored:    item.PointsScored,
			EventIDs:        pq.Int64Array(item.EventIDs),
			IsClutch:        item.IsClutch,
			IsOvertime:      item.IsOvertime,
		})
	}

	chunkSize := qb.MaxBindArgs / possessionColumnCount
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		query, args, err := qb.InsertModels(possessionsTable, rows[start:end], "")
		if err != nil {
			return fmt.Errorf("build insert possessions query: %w", err)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert possessions game=%s rows=%d-%d: %w", gameID, start, end, err)
		}
	}

	return t.upsertQualityReport(ctx, gameID, report)
}

func (t *gameTx) upsertQualityReport(ctx context.Context, gameID string, report possession.QualityReport) error {
	checks, err := sonic.MarshalString(report.Checks)
	if err != nil {
		return fmt.Errorf("encode quality checks game=%s: %w", gameID, err)
	}
	metrics, err := sonic.MarshalString(report.Metrics)
	if err != nil {
		return fmt.Errorf("encode quality metrics game=%s: %w", gameID, err)
	}

	model := []qualityReportTableModel{{
		GameID:  gameID,
		Passed:  report.Passed,
		Checks:  checks,
		Metrics: metrics,
	}}
	query, args, err := qb.InsertModels(qualityReportsTable, model, `ON CONFLICT (game_id)
DO UPDATE SET
    passed = EXCLUDED.passed,
    checks = EXCLUDED.checks,
    metrics = EXCLUDED.metrics,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert quality report query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert quality report game=%s: %w", gameID, err)
	}
	return nil
}
