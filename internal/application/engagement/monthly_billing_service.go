package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"github.com/estudio-contable/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GenerationLockTTL bounds how long a crashed run can block its (owner, day) key
const GenerationLockTTL = 2 * time.Minute

// MonthlyBillingService creates the monthly bookkeeping engagements of fixed clients
type MonthlyBillingService struct {
	txScope   TransactionScope
	repo      engagement.Repository
	runs      engagement.GenerationRunRepository
	owners    OwnerLister
	locker    shared.Locker
	publisher shared.EventPublisher
	metrics   BillingMetrics
	logger    *zap.Logger
}

// MonthlyBillingDeps holds the collaborators of MonthlyBillingService
type MonthlyBillingDeps struct {
	TxScope   TransactionScope
	Repo      engagement.Repository
	Runs      engagement.GenerationRunRepository // read side of the audit trail
	Owners    OwnerLister
	Locker    shared.Locker
	Publisher shared.EventPublisher
	Metrics   BillingMetrics
	Logger    *zap.Logger
}

// NewMonthlyBillingService creates a new MonthlyBillingService
func NewMonthlyBillingService(deps MonthlyBillingDeps) *MonthlyBillingService {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &MonthlyBillingService{
		txScope:   deps.TxScope,
		repo:      deps.Repo,
		runs:      deps.Runs,
		owners:    deps.Owners,
		locker:    deps.Locker,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    log,
	}
}

// resolveBillingDay fills missing parts from today and validates the result
func resolveBillingDay(input GenerateMonthlyInput) (time.Time, error) {
	today := shared.Today()
	day, month, year := today.Day(), int(today.Month()), today.Year()
	if input.Day != nil {
		day = *input.Day
	}
	if input.Month != nil {
		month = *input.Month
	}
	if input.Year != nil {
		year = *input.Year
	}
	if err := validateMonthYear(month, year); err != nil {
		return time.Time{}, err
	}
	return shared.NewDate(year, month, day)
}

func generationLockKey(ownerID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("billing:generate:%s:%s", ownerID, day.Format(shared.ISODate))
}

// Generate bills every active fixed client of the owner for one day.
//
// The batch is all-or-nothing. A second run for a day that already has
// recurring engagements fails with *engagement.AlreadyGeneratedError, whether
// it is caught by the pre-count or by the unique index.
func (s *MonthlyBillingService) Generate(ctx context.Context, input GenerateMonthlyInput) (*GenerationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "monthly_billing", "generate")
	defer span.End()

	day, err := resolveBillingDay(input)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	ownerID := input.OwnerID
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOwnerID, ownerID.String(),
		telemetry.SpanAttrBillingDay, day.Format(shared.ISODate),
		telemetry.SpanAttrTrigger, string(input.Trigger),
	)

	var result *GenerationResult
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("generate_monthly", map[string]string{"trigger": string(input.Trigger)}), func(ctx context.Context) {
		result, err = s.generate(ctx, ownerID, day, input.Trigger)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return result, nil
}

func (s *MonthlyBillingService) generate(ctx context.Context, ownerID uuid.UUID, day time.Time, trigger engagement.Trigger) (*GenerationResult, error) {
	log := logger.WithLogger(ctx, s.logger).With(
		zap.String("owner_id", ownerID.String()),
		zap.String("billing_day", day.Format(shared.ISODate)),
	)

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, generationLockKey(ownerID, day), GenerationLockTTL)
		if err != nil {
			return nil, shared.NewPersistenceError("generate_monthly", ownerID, day.Format(shared.ISODate), fmt.Errorf("acquire generation lock: %w", err))
		}
		if !ok {
			return nil, engagement.ErrGenerationInProgress
		}
		defer release()
	}

	result := &GenerationResult{Day: day.Day(), Month: int(day.Month()), Year: day.Year()}
	var run *engagement.GenerationRun
	start, end := shared.DayBounds(day)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		count, err := repos.Engagements().CountRecurringInRange(ctx, ownerID, start, end)
		if err != nil {
			return err
		}
		if count > 0 {
			return engagement.NewAlreadyGeneratedError(count, day)
		}

		clients, err := repos.Clients().FindActiveRecurring(ctx, ownerID)
		if err != nil {
			return err
		}
		if len(clients) == 0 {
			result.Message = "No hay clientes fijos activos"
			return nil
		}

		batch := make([]*engagement.Engagement, 0, len(clients))
		generated := make([]engagement.GeneratedClient, 0, len(clients))
		var warnings []engagement.DataQualityWarning
		for _, c := range clients {
			fee, warning := engagement.BillableFee(c)
			if warning != nil {
				warnings = append(warnings, *warning)
			}
			e, err := engagement.NewRecurringEngagement(ownerID, c.ID, fee, day)
			if err != nil {
				return err
			}
			e.ClientName = c.Name
			batch = append(batch, e)
			generated = append(generated, engagement.GeneratedClient{ID: c.ID, Name: c.Name})
		}

		if err := repos.Engagements().InsertMany(ctx, batch); err != nil {
			return err
		}
		run = engagement.NewGenerationRun(ownerID, day, trigger, generated, warnings)
		if err := repos.GenerationRuns().Save(ctx, run); err != nil {
			return fmt.Errorf("save generation run: %w", err)
		}
		return nil
	})
	if err != nil {
		// AlreadyGeneratedError shares the ErrDuplicateRecurring code, so it is
		// matched first.
		var already *engagement.AlreadyGeneratedError
		if errors.As(err, &already) {
			log.Info("Monthly engagements already generated", zap.Int64("existing", already.Count))
			return nil, err
		}
		if errors.Is(err, engagement.ErrDuplicateRecurring) {
			return nil, s.alreadyGenerated(ctx, ownerID, day, start, end)
		}
		log.Error("Monthly generation failed", zap.Error(err))
		return nil, shared.NewPersistenceError("generate_monthly", ownerID, day.Format(shared.ISODate), err)
	}

	if run == nil {
		log.Info("No active fixed clients to bill")
		return result, nil
	}

	result.Generated = run.Generated
	result.Clients = run.Clients
	result.Warnings = run.Warnings
	result.RunID = &run.ID
	result.Message = fmt.Sprintf("Se generaron %d mensualidades para %s", run.Generated, shared.FormatDMY(day))

	for _, w := range run.Warnings {
		log.Warn("Fixed client billed at zero",
			zap.String("client_id", w.ClientID.String()),
			zap.String("client_name", w.ClientName),
			zap.String("reason", w.Reason),
		)
	}
	log.Info("Monthly engagements generated",
		zap.Int("generated", run.Generated),
		zap.Int("warnings", len(run.Warnings)),
		zap.String("trigger", string(run.Trigger)),
	)

	if s.publisher != nil {
		clientIDs := make([]uuid.UUID, len(run.Clients))
		for i, c := range run.Clients {
			clientIDs[i] = c.ID
		}
		_ = s.publisher.Publish(ctx, engagement.NewMonthlyGeneratedEvent(run.ID, ownerID, day, clientIDs))
	}
	if s.metrics != nil {
		s.metrics.RecordEngagementsGenerated(ctx, ownerID, run.Trigger, run.Generated)
		if len(run.Warnings) > 0 {
			s.metrics.RecordDataQualityWarnings(ctx, ownerID, len(run.Warnings))
		}
	}
	return result, nil
}

// alreadyGenerated re-counts after a unique index collision so the error
// reports the rows the concurrent run committed.
func (s *MonthlyBillingService) alreadyGenerated(ctx context.Context, ownerID uuid.UUID, day, start, end time.Time) error {
	count, err := s.repo.CountRecurringInRange(ctx, ownerID, start, end)
	if err != nil || count == 0 {
		return engagement.ErrDuplicateRecurring
	}
	return engagement.NewAlreadyGeneratedError(count, day)
}

// GenerateForAllOwners runs Generate for every active owner on date. Failures
// of one owner do not stop the batch.
func (s *MonthlyBillingService) GenerateForAllOwners(ctx context.Context, date time.Time) (*BatchSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "monthly_billing", "generate_all")
	defer span.End()

	date = shared.DateOf(date)
	summary := &BatchSummary{Date: date}

	owners, err := s.owners.FindActiveIDs(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("list active owners: %w", err)
	}
	summary.Owners = len(owners)

	day, month, year := date.Day(), int(date.Month()), date.Year()
	for _, ownerID := range owners {
		if ctx.Err() != nil {
			summary.Errors = append(summary.Errors, ctx.Err().Error())
			break
		}
		res, err := s.Generate(ctx, GenerateMonthlyInput{
			OwnerID: ownerID,
			Day:     &day,
			Month:   &month,
			Year:    &year,
			Trigger: engagement.TriggerCron,
		})
		if err != nil {
			var already *engagement.AlreadyGeneratedError
			if errors.As(err, &already) || errors.Is(err, engagement.ErrGenerationInProgress) {
				summary.Skipped++
				continue
			}
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", ownerID, err))
			logger.WithLogger(ctx, s.logger).Error("Scheduled generation failed for owner",
				zap.String("owner_id", ownerID.String()),
				zap.Error(err),
			)
			continue
		}
		if res.Generated > 0 {
			summary.OwnersWithRows++
			summary.Generated += res.Generated
		}
	}

	telemetry.SetAttributes(span,
		"billing.owners", summary.Owners,
		"billing.generated", summary.Generated,
		"billing.failed", summary.Failed,
	)
	telemetry.SetOK(span)
	return summary, nil
}

// FixRecurringAmounts reprices recurring engagements billed at 0 whose client
// now has a positive fee.
func (s *MonthlyBillingService) FixRecurringAmounts(ctx context.Context, ownerID uuid.UUID) (*FixAmountsResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "monthly_billing", "fix_amounts")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOwnerID, ownerID.String())

	result := &FixAmountsResult{}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		zeroed, err := repos.Engagements().FindRecurringWithZeroTotal(ctx, ownerID)
		if err != nil {
			return err
		}
		if len(zeroed) == 0 {
			return nil
		}

		fees := make(map[uuid.UUID]*decimal.Decimal)
		names := make(map[uuid.UUID]string)
		for i := range zeroed {
			e := &zeroed[i]
			fee, seen := fees[e.ClientID]
			if !seen {
				c, err := repos.Clients().FindByIDForOwner(ctx, ownerID, e.ClientID)
				switch {
				case errors.Is(err, shared.ErrNotFound):
					fee = nil
				case err != nil:
					return err
				default:
					fee = c.MonthlyFee
					names[e.ClientID] = c.Name
				}
				fees[e.ClientID] = fee
			}
			if fee == nil || !fee.IsPositive() {
				continue
			}

			previous := e.TotalAmount
			if err := e.Reprice(*fee); err != nil {
				return err
			}
			if err := repos.Engagements().Save(ctx, e); err != nil {
				return err
			}
			name := e.ClientName
			if name == "" {
				name = names[e.ClientID]
			}
			result.Engagements = append(result.Engagements, FixedAmount{
				ID:             e.ID,
				ClientName:     name,
				PreviousAmount: previous,
				NewAmount:      e.TotalAmount,
			})
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("fix_recurring_amounts", ownerID, "", err)
	}

	result.Updated = len(result.Engagements)
	if result.Updated == 0 {
		result.Message = "No hay operaciones de mensualidad con monto 0 para corregir"
	} else {
		result.Message = fmt.Sprintf("Se actualizaron %d operaciones de mensualidad", result.Updated)
		logger.WithLogger(ctx, s.logger).Info("Recurring amounts fixed",
			zap.String("owner_id", ownerID.String()),
			zap.Int("updated", result.Updated),
		)
	}
	telemetry.SetOK(span)
	return result, nil
}

// Limits for RecentRuns
const (
	DefaultRecentRuns = 10
	MaxRecentRuns     = 100
)

// RecentRuns lists the owner's latest committed generation batches, newest first.
func (s *MonthlyBillingService) RecentRuns(ctx context.Context, ownerID uuid.UUID, limit int) ([]GenerationRunResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "monthly_billing", "recent_runs")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOwnerID, ownerID.String())

	if s.runs == nil {
		return []GenerationRunResponse{}, nil
	}
	if limit <= 0 {
		limit = DefaultRecentRuns
	}
	limit = min(limit, MaxRecentRuns)

	runs, err := s.runs.FindRecentForOwner(ctx, ownerID, limit)
	if err != nil {
		err = shared.NewPersistenceError("recent_runs", ownerID, "", err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	out := make([]GenerationRunResponse, len(runs))
	for i := range runs {
		out[i] = ToGenerationRunResponse(&runs[i])
	}
	telemetry.SetOK(span)
	return out, nil
}
