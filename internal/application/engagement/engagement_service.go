package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"github.com/estudio-contable/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultUpcomingDays is the look-ahead window for upcoming due dates
	DefaultUpcomingDays = 7
	// PaymentKeyTTL is how long a payment Idempotency-Key is remembered
	PaymentKeyTTL = 24 * time.Hour
	// MinReportYear is the earliest year accepted by monthly and annual queries
	MinReportYear = 2020
)

var minPayment = decimal.RequireFromString("0.01")

// EngagementService handles engagement use cases for one owner at a time
type EngagementService struct {
	repo        engagement.Repository
	clientRepo  client.Repository
	txScope     TransactionScope
	idempotency shared.IdempotencyStore
	publisher   shared.EventPublisher
	metrics     BillingMetrics
	logger      *zap.Logger
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	repo engagement.Repository,
	clientRepo client.Repository,
	txScope TransactionScope,
	log *zap.Logger,
) *EngagementService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EngagementService{
		repo:       repo,
		clientRepo: clientRepo,
		txScope:    txScope,
		logger:     log,
	}
}

// SetIdempotencyStore enables Idempotency-Key handling on payments
func (s *EngagementService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *EngagementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *EngagementService) SetMetrics(metrics BillingMetrics) {
	s.metrics = metrics
}

// publishDomainEvents publishes and clears the aggregate's pending events.
// Reopened engagements are logged as warnings.
func (s *EngagementService) publishDomainEvents(ctx context.Context, e *engagement.Engagement) {
	events := e.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	for _, ev := range events {
		if ev.EventType() == engagement.EventTypeEngagementReopened {
			logger.WithLogger(ctx, s.logger).Warn("Completed engagement reopened by edit",
				zap.String("owner_id", e.OwnerID.String()),
				zap.String("engagement_id", e.ID.String()),
				zap.String("client_id", e.ClientID.String()),
				zap.String("paid_amount", e.PaidAmount.String()),
				zap.String("total_amount", e.TotalAmount.String()),
			)
		}
	}
	if s.publisher != nil {
		// errors are logged by the event bus, not propagated
		_ = s.publisher.Publish(ctx, events...)
	}
	e.ClearDomainEvents()
}

// Create registers a manual engagement for a client of the owner
func (s *EngagementService) Create(ctx context.Context, ownerID uuid.UUID, input CreateEngagementInput) (*EngagementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "engagement", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOwnerID, ownerID.String(),
		telemetry.SpanAttrClientID, input.ClientID.String(),
	)

	c, err := s.clientRepo.FindByIDForOwner(ctx, ownerID, input.ClientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	e, err := engagement.NewEngagement(ownerID, c.ID, input.Type, input.Fee, input.StartDate, input.DueDate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	e.ClientName = c.Name
	e.Description = input.Description
	e.Notes = input.Notes
	if input.GrossIncome != nil {
		if err := e.SetGrossIncome(*input.GrossIncome); err != nil {
			return nil, err
		}
	}
	if input.PaidAmount != nil {
		if err := e.RecomputeFromPaidAmount(*input.PaidAmount, nil); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && (*input.Status == engagement.StatusCompleted || input.PaidAmount == nil) {
		if err := e.ChangeStatus(*input.Status); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, e); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("create_engagement", ownerID, e.ID.String(), err)
	}
	s.publishDomainEvents(ctx, e)
	telemetry.SetOK(span)

	resp := ToEngagementResponse(e)
	return &resp, nil
}

// List returns one page of the owner's engagements
func (s *EngagementService) List(ctx context.Context, ownerID uuid.UUID, input ListEngagementsInput) (*shared.Paginated[EngagementResponse], error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Estado de operación inválido")
	}
	filter := engagement.Filter{
		Filter:   shared.Filter{Page: input.Page, PageSize: input.Limit},
		Status:   input.Status,
		ClientID: input.ClientID,
	}
	filter.Normalize()

	engagements, total, err := s.repo.FindAllForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, shared.NewPersistenceError("list_engagements", ownerID, "", err)
	}
	page := shared.NewPaginated(ToEngagementResponses(engagements), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one engagement of the owner
func (s *EngagementService) Get(ctx context.Context, ownerID, id uuid.UUID) (*EngagementResponse, error) {
	e, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, shared.NewPersistenceError("get_engagement", ownerID, id.String(), err)
	}
	resp := ToEngagementResponse(e)
	return &resp, nil
}

// Update applies a partial edit under a row lock.
//
// With a paid amount the state is recomputed from it, using the edited fee as
// the new total when present. A fee alone reprices the engagement. Completing
// through the edit marks it paid in full.
func (s *EngagementService) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateEngagementInput) (*EngagementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "engagement", "update")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOwnerID, ownerID.String(),
		telemetry.SpanAttrEngagementID, id.String(),
	)

	var updated *engagement.Engagement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		e, err := repos.Engagements().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := applyEdit(ctx, repos, e, input); err != nil {
			return err
		}
		if err := repos.Engagements().Save(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("update_engagement", ownerID, id.String(), err)
	}

	s.publishDomainEvents(ctx, updated)
	telemetry.SetOK(span)
	return s.Get(ctx, ownerID, id)
}

func applyEdit(ctx context.Context, repos TransactionalRepositories, e *engagement.Engagement, input UpdateEngagementInput) error {
	if input.ClientID != nil && *input.ClientID != e.ClientID {
		c, err := repos.Clients().FindByIDForOwner(ctx, e.OwnerID, *input.ClientID)
		if err != nil {
			return err
		}
		if err := e.Reassign(c.ID); err != nil {
			return err
		}
	}
	if input.Type != nil {
		if err := e.SetType(*input.Type); err != nil {
			return err
		}
	}
	if input.Description != nil {
		e.SetDescription(*input.Description)
	}
	if input.Notes != nil {
		e.SetNotes(*input.Notes)
	}
	if input.GrossIncome != nil {
		if err := e.SetGrossIncome(*input.GrossIncome); err != nil {
			return err
		}
	}
	if input.StartDate != nil || input.DueDate != nil {
		start, due := e.StartDate, e.DueDate
		if input.StartDate != nil {
			start = *input.StartDate
		}
		if input.DueDate != nil {
			due = input.DueDate
		}
		if err := e.Reschedule(start, due); err != nil {
			return err
		}
	}

	switch {
	case input.PaidAmount != nil:
		if err := e.RecomputeFromPaidAmount(*input.PaidAmount, input.Fee); err != nil {
			return err
		}
	case input.Fee != nil:
		if err := e.Reprice(*input.Fee); err != nil {
			return err
		}
	}

	if input.Status != nil {
		// a paid amount in the same edit already derived the status
		if *input.Status == engagement.StatusCompleted || input.PaidAmount == nil {
			return e.ChangeStatus(*input.Status)
		}
		if !input.Status.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", "Estado de operación inválido")
		}
	}
	return nil
}

// Delete removes an engagement of the owner
func (s *EngagementService) Delete(ctx context.Context, ownerID, id uuid.UUID) (*DeleteResponse, error) {
	if err := s.repo.DeleteForOwner(ctx, ownerID, id); err != nil {
		return nil, shared.NewPersistenceError("delete_engagement", ownerID, id.String(), err)
	}
	return &DeleteResponse{Message: "Operación eliminada correctamente"}, nil
}

// ChangeStatus is the manual status switch, serialized with payments by the row lock
func (s *EngagementService) ChangeStatus(ctx context.Context, ownerID, id uuid.UUID, status engagement.Status) (*EngagementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "engagement", "change_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOwnerID, ownerID.String(),
		telemetry.SpanAttrEngagementID, id.String(),
		telemetry.SpanAttrStatus, string(status),
	)

	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Estado de operación inválido")
	}

	var changed *engagement.Engagement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		e, err := repos.Engagements().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := e.ChangeStatus(status); err != nil {
			return err
		}
		changed = e
		return repos.Engagements().Save(ctx, e)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("change_status", ownerID, id.String(), err)
	}

	s.publishDomainEvents(ctx, changed)
	telemetry.SetOK(span)
	return s.Get(ctx, ownerID, id)
}

// RecordPayment applies a payment under a row lock so concurrent payments on
// the same engagement serialize. A repeated idempotencyKey returns the current
// engagement without applying the payment again.
func (s *EngagementService) RecordPayment(ctx context.Context, ownerID, id uuid.UUID, amount decimal.Decimal, idempotencyKey string) (*EngagementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "engagement", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOwnerID, ownerID.String(),
		telemetry.SpanAttrEngagementID, id.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	if amount.LessThan(minPayment) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "El monto del pago debe ser mayor a 0")
	}

	key := ""
	if idempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("payment:%s:%s:%s", ownerID, id, idempotencyKey)
	}

	var paid *engagement.Engagement
	replayed := false
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		e, err := repos.Engagements().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if key != "" {
			// checked under the row lock: a replay waits for the first request to commit
			done, err := s.idempotency.IsProcessed(ctx, key)
			if err != nil {
				return fmt.Errorf("check idempotency key: %w", err)
			}
			if done {
				replayed = true
				return nil
			}
		}
		if err := e.ApplyPayment(amount); err != nil {
			return err
		}
		if err := repos.Engagements().Save(ctx, e); err != nil {
			return err
		}
		if key != "" {
			if _, err := s.idempotency.MarkProcessed(ctx, key, PaymentKeyTTL); err != nil {
				return fmt.Errorf("mark idempotency key: %w", err)
			}
		}
		paid = e
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		var over *engagement.OverpaymentError
		if errors.As(err, &over) {
			logger.WithLogger(ctx, s.logger).Info("Payment rejected: exceeds total",
				zap.String("owner_id", ownerID.String()),
				zap.String("engagement_id", id.String()),
				zap.String("remaining", over.Remaining.String()),
			)
		}
		return nil, shared.NewPersistenceError("record_payment", ownerID, id.String(), err)
	}

	if replayed {
		logger.WithLogger(ctx, s.logger).Info("Replayed payment ignored",
			zap.String("owner_id", ownerID.String()),
			zap.String("engagement_id", id.String()),
		)
	} else {
		s.publishDomainEvents(ctx, paid)
		if s.metrics != nil {
			s.metrics.RecordPayment(ctx, ownerID, amount)
		}
	}
	telemetry.SetOK(span)
	return s.Get(ctx, ownerID, id)
}

// Upcoming lists pending engagements due within the next days (today included)
func (s *EngagementService) Upcoming(ctx context.Context, ownerID uuid.UUID, days int) ([]EngagementResponse, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	today := shared.Today()
	engagements, err := s.repo.FindPendingDueBetween(ctx, ownerID, today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, shared.NewPersistenceError("upcoming_engagements", ownerID, "", err)
	}
	return ToEngagementResponses(engagements), nil
}

// Overdue lists pending engagements whose due date is today or earlier
func (s *EngagementService) Overdue(ctx context.Context, ownerID uuid.UUID) ([]EngagementResponse, error) {
	engagements, err := s.repo.FindPendingDueBy(ctx, ownerID, shared.Today())
	if err != nil {
		return nil, shared.NewPersistenceError("overdue_engagements", ownerID, "", err)
	}
	return ToEngagementResponses(engagements), nil
}

// Stats summarizes the owner's engagements
func (s *EngagementService) Stats(ctx context.Context, ownerID uuid.UUID) (*StatsResponse, error) {
	stats, err := s.repo.Stats(ctx, ownerID, shared.Today())
	if err != nil {
		return nil, shared.NewPersistenceError("engagement_stats", ownerID, "", err)
	}
	return &StatsResponse{
		Total:            stats.Total,
		Pending:          stats.Pending,
		InProgress:       stats.InProgress,
		Completed:        stats.Completed,
		Overdue:          stats.Overdue,
		TotalAmount:      stats.TotalAmount.Round(2),
		PendingAmount:    stats.PendingAmount.Round(2),
		InProgressAmount: stats.InProgressAmount.Round(2),
		CompletedAmount:  stats.CompletedAmount.Round(2),
	}, nil
}

// ByMonth lists engagements due in a calendar month
func (s *EngagementService) ByMonth(ctx context.Context, ownerID uuid.UUID, month, year int) ([]EngagementResponse, error) {
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}
	from, to := shared.MonthBounds(year, month)
	engagements, err := s.repo.FindDueBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, shared.NewPersistenceError("engagements_by_month", ownerID, "", err)
	}
	return ToEngagementResponses(engagements), nil
}

func validateYear(year int) error {
	if year < MinReportYear {
		return shared.NewDomainError("INVALID_DATE", fmt.Sprintf("El año debe ser mayor o igual a %d", MinReportYear))
	}
	return nil
}

func validateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return shared.NewDomainError("INVALID_DATE", "El mes debe estar entre 1 y 12")
	}
	return validateYear(year)
}
