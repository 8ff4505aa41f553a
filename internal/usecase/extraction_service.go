package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
	"github.com/riskibarqy/possession-tracker/internal/platform/id"
	"github.com/riskibarqy/possession-tracker/internal/platform/logging"
	"github.com/riskibarqy/possession-tracker/internal/platform/metrics"
	"github.com/riskibarqy/possession-tracker/internal/platform/resilience"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ExtractionConfig is loaded once per batch.
type ExtractionConfig struct {
	Concurrency              int
	DryRun                   bool
	BlockOnValidationFailure bool
	GameTimeout              time.Duration
	MismatchStrategy         string
	Keywords                 possession.Keywords
	Validator                possession.ValidatorConfig
}

type BatchInput struct {
	// GameIDs selects the games to process; empty means every game in the event store.
	GameIDs     []string
	Concurrency int
	DryRun      bool
}

type GameFailure struct {
	GameID  string `json:"game_id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type GameSummary struct {
	GameID              string   `json:"game_id"`
	Success             bool     `json:"success"`
	Persisted           bool     `json:"persisted"`
	Possessions         int      `json:"possessions"`
	LowConfidenceCount  int      `json:"low_confidence_count"`
	TeamMismatchWarning int      `json:"team_mismatch_warnings"`
	DroppedEventCount   int      `json:"dropped_event_count"`
	MalformedEventCount int      `json:"malformed_event_count"`
	ReportPassed        bool     `json:"report_passed"`
	FailedChecks        []string `json:"failed_checks,omitempty"`
	DurationMs          int64    `json:"duration_ms"`
}

type BatchResult struct {
	RunID         string        `json:"run_id"`
	DryRun        bool          `json:"dry_run"`
	WorkerCount   int           `json:"worker_count"`
	Requested     int           `json:"requested"`
	Processed     int           `json:"processed"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	FailedGameIDs []string      `json:"failed_game_ids"`
	Failures      []GameFailure `json:"failures,omitempty"`
	// ValidationFlagged lists persisted games whose quality report failed.
	ValidationFlagged []string      `json:"validation_flagged,omitempty"`
	NotStarted        []string      `json:"not_started,omitempty"`
	Games             []GameSummary `json:"games"`
	Elapsed           time.Duration `json:"elapsed"`
}

type ExtractionService struct {
	repo       possession.Repository
	cfg        ExtractionConfig
	classifier possession.EventClassifier
	mismatch   possession.MismatchStrategy
	validator  *possession.Validator
	logger     *logging.Logger
	metrics    *metrics.Extraction
	breaker    *resilience.CircuitBreaker
	ids        id.Generator
}

type ExtractionOption func(*ExtractionService)

func WithLogger(logger *logging.Logger) ExtractionOption {
	return func(s *ExtractionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Extraction) ExtractionOption {
	return func(s *ExtractionService) { s.metrics = m }
}

// WithCircuitBreaker guards the store; once it opens, remaining games fail fast.
func WithCircuitBreaker(b *resilience.CircuitBreaker) ExtractionOption {
	return func(s *ExtractionService) { s.breaker = b }
}

func WithIDGenerator(gen id.Generator) ExtractionOption {
	return func(s *ExtractionService) {
		if gen != nil {
			s.ids = gen
		}
	}
}

func WithClassifier(classifier possession.EventClassifier) ExtractionOption {
	return func(s *ExtractionService) {
		if classifier != nil {
			s.classifier = classifier
		}
	}
}

// NewExtractionService rejects configuration that would silently invalidate every
// game with ErrFatalConfig.
func NewExtractionService(repo possession.Repository, cfg ExtractionConfig, opts ...ExtractionOption) (*ExtractionService, error) {
	if repo == nil {
		return nil, crerr.Mark(crerr.New("possession repository is required"), ErrFatalConfig)
	}
	if cfg.Concurrency <= 0 {
		return nil, crerr.Mark(crerr.Newf("concurrency must be > 0, got %d", cfg.Concurrency), ErrFatalConfig)
	}
	if cfg.GameTimeout <= 0 {
		cfg.GameTimeout = 30 * time.Second
	}
	if err := validateKeywords(cfg.Keywords); err != nil {
		return nil, crerr.Mark(err, ErrFatalConfig)
	}
	if err := validateValidatorConfig(cfg.Validator); err != nil {
		return nil, crerr.Mark(err, ErrFatalConfig)
	}
	mismatch, err := possession.MismatchStrategyByName(cfg.MismatchStrategy)
	if err != nil {
		return nil, crerr.Mark(err, ErrFatalConfig)
	}

	s := &ExtractionService{
		repo:       repo,
		cfg:        cfg,
		classifier: possession.NewKeywordClassifier(cfg.Keywords),
		mismatch:   mismatch,
		validator:  possession.NewValidator(cfg.Validator),
		logger:     logging.Default(),
		ids:        id.NewUUIDGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListGameIDs returns every game known to the event store.
func (s *ExtractionService) ListGameIDs(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExtractionService.ListGameIDs")
	defer span.End()

	var ids []string
	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		ids, err = s.repo.ListGameIDs(ctx)
		return err
	}, nil)
	if err != nil {
		return nil, crerr.Wrap(crerr.Mark(err, ErrTransaction), "list game ids")
	}
	return ids, nil
}

// GameView is what the store currently holds for one game.
type GameView struct {
	GameID      string                   `json:"game_id"`
	Possessions []possession.Possession  `json:"possessions"`
	Report      possession.QualityReport `json:"report"`
}

func (s *ExtractionService) GetGame(ctx context.Context, gameID string) (GameView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExtractionService.GetGame")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return GameView{}, crerr.Wrap(ErrInvalidInput, "game id is required")
	}
	report, err := s.repo.GetQualityReport(ctx, gameID)
	if err != nil {
		return GameView{}, crerr.Wrapf(err, "get quality report game=%s", gameID)
	}
	items, err := s.repo.ListGamePossessions(ctx, gameID)
	if err != nil {
		return GameView{}, crerr.Wrapf(err, "list possessions game=%s", gameID)
	}
	return GameView{GameID: gameID, Possessions: items, Report: report}, nil
}

// Run processes a batch of games concurrently. Each game runs in its own
// transaction; one game's failure never affects another.
func (s *ExtractionService) Run(ctx context.Context, input BatchInput) (BatchResult, error) {
	start := time.Now()
	runID, err := s.ids.NewID()
	if err != nil {
		return BatchResult{}, crerr.Wrap(err, "generate run id")
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.ExtractionService.Run")
	defer span.End()
	span.SetAttributes(runIDAttr(runID), attribute.Bool("dry_run", input.DryRun))

	logger := s.logger.With("run_id", runID)
	dryRun := input.DryRun || s.cfg.DryRun

	gameIDs := dedupeGameIDs(input.GameIDs)
	if len(input.GameIDs) == 0 {
		all, err := s.ListGameIDs(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "list game ids")
			return BatchResult{}, err
		}
		gameIDs = dedupeGameIDs(all)
	}

	workerCount := normalizeWorkerCount(input.Concurrency, s.cfg.Concurrency, len(gameIDs))
	result := BatchResult{
		RunID:         runID,
		DryRun:        dryRun,
		WorkerCount:   workerCount,
		Requested:     len(gameIDs),
		FailedGameIDs: []string{},
		Games:         make([]GameSummary, 0, len(gameIDs)),
	}
	logger.InfoContext(ctx, "extraction batch started",
		"games", len(gameIDs),
		"workers", workerCount,
		"dry_run", dryRun,
	)
	if len(gameIDs) == 0 {
		result.Elapsed = time.Since(start)
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BatchResult{}, crerr.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	outcomes := make([]*possession.GameProcessingResult, len(gameIDs))
	var (
		workers    sync.WaitGroup
		notStarted sync.Map
	)
	for i, gameID := range gameIDs {
		if ctx.Err() != nil {
			notStarted.Store(i, gameID)
			continue
		}
		i, gameID := i, gameID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if ctx.Err() != nil {
				notStarted.Store(i, gameID)
				return
			}
			outcome := s.processGame(ctx, logger, gameID, dryRun)
			outcomes[i] = &outcome
		}); err != nil {
			workers.Done()
			notStarted.Store(i, gameID)
			logger.ErrorContext(ctx, "submit game to worker pool", "game_id", gameID, "error", err)
		}
	}
	workers.Wait()

	for i, outcome := range outcomes {
		if outcome == nil {
			if gameID, ok := notStarted.Load(i); ok {
				result.NotStarted = append(result.NotStarted, gameID.(string))
			}
			continue
		}
		result.Processed++
		result.Games = append(result.Games, summarize(*outcome))
		switch {
		case !outcome.Success:
			result.Failed++
			result.FailedGameIDs = append(result.FailedGameIDs, outcome.GameID)
			result.Failures = append(result.Failures, GameFailure{
				GameID:  outcome.GameID,
				Kind:    outcome.FailureKind,
				Message: outcome.FailureReason,
			})
		default:
			result.Succeeded++
			if outcome.Report != nil && !outcome.Report.Passed {
				result.ValidationFlagged = append(result.ValidationFlagged, outcome.GameID)
			}
		}
	}
	sort.Strings(result.FailedGameIDs)
	result.Elapsed = time.Since(start)

	s.metrics.ObserveBatch(result.Elapsed, result.Failed)
	span.SetAttributes(
		attribute.Int("games.processed", result.Processed),
		attribute.Int("games.failed", result.Failed),
	)
	logger.InfoContext(ctx, "extraction batch finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"validation_flagged", len(result.ValidationFlagged),
		"not_started", len(result.NotStarted),
		"elapsed", result.Elapsed,
	)
	if err := ctx.Err(); err != nil {
		return result, crerr.Wrapf(err, "batch interrupted with %d games not started", len(result.NotStarted))
	}
	return result, nil
}

func (s *ExtractionService) processGame(ctx context.Context, logger *logging.Logger, gameID string, dryRun bool) possession.GameProcessingResult {
	start := time.Now()
	ctx, span := startUsecaseSpan(ctx, "usecase.ExtractionService.processGame")
	defer span.End()
	span.SetAttributes(attribute.String("game_id", gameID))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.GameTimeout)
	defer cancel()

	out := possession.GameProcessingResult{GameID: gameID}
	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		var txErr error
		recovered := panics.Try(func() {
			txErr = s.repo.WithinGameTx(ctx, gameID, func(ctx context.Context, tx possession.GameTx) error {
				return s.extractGame(ctx, logger, tx, gameID, dryRun, &out)
			})
		})
		if recovered != nil {
			return crerr.Mark(crerr.Wrapf(recovered.AsError(), "game=%s panicked", gameID), errGamePanicked)
		}
		return txErr
	}, isStoreFailure)

	switch {
	case err == nil:
		out.Success = true
		out.Persisted = !dryRun
	case crerr.Is(err, errDryRunRollback):
		out.Success = true
	default:
		out.Success = false
		out.Persisted = false
		out.FailureKind = failureKind(err)
		out.FailureReason = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, out.FailureKind)
	}
	out.Duration = time.Since(start)
	s.metrics.ObserveGame(out, dryRun)

	fields := []any{
		"game_id", gameID,
		"success", out.Success,
		"persisted", out.Persisted,
		"possessions", len(out.Possessions),
		"low_confidence", out.LowConfidenceCount,
		"mismatch_warnings", out.TeamMismatchWarnings,
		"dropped_events", out.DroppedEventCount,
		"malformed_events", out.MalformedEventCount,
		"duration_ms", out.Duration.Milliseconds(),
	}
	if out.Report != nil {
		fields = append(fields, "report_passed", out.Report.Passed)
	}
	if !out.Success {
		logger.ErrorContext(ctx, "game extraction failed", append(fields, "kind", out.FailureKind, "error", err)...)
		return out
	}
	logger.InfoContext(ctx, "game extracted", fields...)
	return out
}

func (s *ExtractionService) extractGame(
	ctx context.Context,
	logger *logging.Logger,
	tx possession.GameTx,
	gameID string,
	dryRun bool,
	out *possession.GameProcessingResult,
) error {
	game, err := tx.GetGame(ctx, gameID)
	switch {
	case crerr.Is(err, possession.ErrGameNotFound):
		game = pbp.Game{ID: gameID}
	case err != nil:
		return crerr.Mark(crerr.Wrapf(err, "get game=%s", gameID), ErrTransaction)
	}
	if game.ID == "" {
		game.ID = gameID
	}

	rows, err := tx.ListGameEvents(ctx, gameID)
	if err != nil {
		return crerr.Mark(crerr.Wrapf(err, "list events game=%s", gameID), ErrTransaction)
	}
	if len(rows) == 0 {
		return crerr.Wrapf(ErrDataError, "game=%s has no play-by-play events", gameID)
	}

	events := make([]pbp.Event, 0, len(rows))
	var malformed []int64
	for _, row := range rows {
		event, err := pbp.Parse(row)
		if err != nil {
			malformed = append(malformed, row.ID)
			logger.DebugContext(ctx, "malformed event skipped", "game_id", gameID, "event_id", row.ID, "error", err)
			continue
		}
		events = append(events, event)
	}

	game = game.InferTeams(events)
	if !game.Complete() {
		return crerr.Wrapf(ErrDataError, "game=%s: cannot determine both participating teams", gameID)
	}

	result := possession.Detect(game, events, possession.DetectorOptions{
		Classifier: s.classifier,
		Mismatch:   s.mismatch,
	})
	result.Diagnostics.MalformedEventIDs = malformed
	report := s.validator.Validate(result)

	out.Possessions = result.Possessions
	out.EndReasonCounts = result.Diagnostics.EndReasonCounts
	out.LowConfidenceCount = result.Diagnostics.LowConfidenceCount
	out.TeamMismatchWarnings = result.Diagnostics.TeamMismatchWarnings
	out.DroppedEventCount = len(result.Diagnostics.DroppedEventIDs)
	out.MalformedEventCount = len(malformed)
	out.Report = &report

	if out.LowConfidenceCount > 0 {
		logger.DebugContext(ctx, "ambiguous attributions resolved heuristically",
			"game_id", gameID,
			"class", ErrAttributionAmbiguity.Error(),
			"count", out.LowConfidenceCount,
			"dropped_event_ids", result.Diagnostics.DroppedEventIDs,
		)
	}
	if !report.Passed {
		logger.WarnContext(ctx, "quality report failed",
			"game_id", gameID,
			"failed_checks", report.FailedChecks(),
			"blocking", s.cfg.BlockOnValidationFailure,
		)
		if s.cfg.BlockOnValidationFailure {
			return crerr.Wrapf(ErrValidationFailure, "game=%s failed checks %s", gameID, strings.Join(report.FailedChecks(), ","))
		}
	}

	if err := tx.ReplaceGamePossessions(ctx, gameID, result.Possessions, report); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "replace possessions game=%s", gameID), ErrTransaction)
	}
	if dryRun {
		return errDryRunRollback
	}
	return nil
}

var errGamePanicked = crerr.New("game processing panicked")

// isStoreFailure reports whether err says something about the store's health,
// as opposed to the game's own data.
func isStoreFailure(err error) bool {
	switch {
	case crerr.Is(err, errDryRunRollback),
		crerr.Is(err, ErrValidationFailure),
		crerr.Is(err, ErrDataError),
		crerr.Is(err, errGamePanicked),
		crerr.Is(err, resilience.ErrCircuitOpen):
		return false
	default:
		return true
	}
}

func summarize(out possession.GameProcessingResult) GameSummary {
	summary := GameSummary{
		GameID:              out.GameID,
		Success:             out.Success,
		Persisted:           out.Persisted,
		Possessions:         len(out.Possessions),
		LowConfidenceCount:  out.LowConfidenceCount,
		TeamMismatchWarning: out.TeamMismatchWarnings,
		DroppedEventCount:   out.DroppedEventCount,
		MalformedEventCount: out.MalformedEventCount,
		DurationMs:          out.Duration.Milliseconds(),
	}
	if out.Report != nil {
		summary.ReportPassed = out.Report.Passed
		summary.FailedChecks = out.Report.FailedChecks()
	}
	return summary
}

func dedupeGameIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		gameID := strings.TrimSpace(raw)
		if gameID == "" {
			continue
		}
		if _, ok := seen[gameID]; ok {
			continue
		}
		seen[gameID] = struct{}{}
		out = append(out, gameID)
	}
	return out
}

func normalizeWorkerCount(requested, fallback, gameCount int) int {
	value := requested
	if value <= 0 {
		value = fallback
	}
	if value <= 0 {
		value = 1
	}
	if gameCount > 0 && value > gameCount {
		value = gameCount
	}
	return value
}

func validateKeywords(keywords possession.Keywords) error {
	if len(cleanList(keywords.OffensiveFoul)) == 0 {
		return crerr.New("offensive foul keyword list is empty")
	}
	if len(cleanList(keywords.Violation)) == 0 {
		return crerr.New("violation keyword list is empty")
	}
	return nil
}

func validateValidatorConfig(cfg possession.ValidatorConfig) error {
	switch {
	case cfg.TeamBalanceThreshold < 0:
		return crerr.Newf("team balance threshold must be >= 0, got %d", cfg.TeamBalanceThreshold)
	case cfg.DurationMinSeconds <= 0 || cfg.DurationMaxSeconds <= cfg.DurationMinSeconds:
		return crerr.Newf("invalid duration band %.1fs-%.1fs", cfg.DurationMinSeconds, cfg.DurationMaxSeconds)
	case cfg.DeanOliverTolerance < 0 || cfg.PointsTolerance < 0:
		return crerr.New("tolerances must be >= 0")
	}
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func runIDAttr(runID string) attribute.KeyValue {
	return attribute.String("run_id", runID)
}
