package event

import (
	"context"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ActivityLogHandler writes one structured log line per engagement lifecycle
// event, giving operators a searchable activity trail.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates the handler
func NewActivityLogHandler(log *zap.Logger) *ActivityLogHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityLogHandler{logger: log.Named("activity")}
}

// EventTypes lists the engagement events this handler records
func (h *ActivityLogHandler) EventTypes() []string {
	return []string{
		engagement.EventTypeEngagementCreated,
		engagement.EventTypePaymentApplied,
		engagement.EventTypeEngagementCompleted,
		engagement.EventTypeEngagementReopened,
		engagement.EventTypeMonthlyGenerated,
	}
}

// Handle logs the event with its business fields
func (h *ActivityLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.WithLogger(ctx, h.logger).With(
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("owner_id", event.OwnerID().String()),
	)

	switch e := event.(type) {
	case *engagement.EngagementCreatedEvent:
		log.Info("Engagement created",
			zap.String("engagement_id", e.EngagementID.String()),
			zap.String("client_id", e.ClientID.String()),
			zap.String("type", string(e.Type)),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)))
	case *engagement.PaymentAppliedEvent:
		log.Info("Payment applied",
			zap.String("engagement_id", e.EngagementID.String()),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.String("paid_amount", e.PaidAmount.StringFixed(2)),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)))
	case *engagement.EngagementCompletedEvent:
		log.Info("Engagement completed",
			zap.String("engagement_id", e.EngagementID.String()),
			zap.String("completed_on", shared.FormatDMY(e.CompletedOn)))
	case *engagement.EngagementReopenedEvent:
		log.Info("Engagement reopened",
			zap.String("engagement_id", e.EngagementID.String()),
			zap.String("status", string(e.Status)),
			zap.String("paid_amount", e.PaidAmount.StringFixed(2)))
	case *engagement.MonthlyGeneratedEvent:
		log.Info("Monthly engagements generated",
			zap.String("run_id", e.AggregateID().String()),
			zap.String("billing_day", shared.FormatDMY(e.BillingDay)),
			zap.Int("generated", e.Generated))
	default:
		log.Debug("Unhandled event")
	}
	return nil
}

var _ shared.EventHandler = (*ActivityLogHandler)(nil)
