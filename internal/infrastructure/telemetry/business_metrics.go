package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// LedgerSnapshot is the open workload of one owner at collection time.
type LedgerSnapshot struct {
	OwnerID    uuid.UUID
	Pending    int64
	InProgress int64
	Overdue    int64
}

// LedgerSnapshotProvider reads the gauges' source data.
type LedgerSnapshotProvider interface {
	Snapshot(ctx context.Context, today time.Time) ([]LedgerSnapshot, error)
}

// BusinessMetrics records payment and generation counters and, when a
// provider is set, periodic gauges of open engagements per owner.
type BusinessMetrics struct {
	logger   *zap.Logger
	provider LedgerSnapshotProvider
	today    func() time.Time

	payments        *Counter
	paymentCents    *Counter
	generated       *Counter
	qualityWarnings *Counter
	openGauge       *Gauge
	overdueGauge    *Gauge
	generationTime  *Histogram

	stopCh   chan struct{}
	stopOnce sync.Once
	runOnce  sync.Once
}

// BusinessMetricsConfig configures NewBusinessMetrics.
type BusinessMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider LedgerSnapshotProvider
	Today    func() time.Time
}

// NewBusinessMetrics registers the ledger instruments on cfg.Meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{
		logger:   cfg.Logger,
		provider: cfg.Provider,
		today:    cfg.Today,
		stopCh:   make(chan struct{}),
	}
	if bm.logger == nil {
		bm.logger = zap.NewNop()
	}
	if bm.today == nil {
		bm.today = time.Now
	}

	var err error
	m := cfg.Meter
	if bm.payments, err = NewCounter(m, "estudio_payments_total", "Payments applied to engagements", "{payments}"); err != nil {
		return nil, err
	}
	if bm.paymentCents, err = NewCounter(m, "estudio_payment_amount_total", "Amount paid in cents", "{cents}"); err != nil {
		return nil, err
	}
	if bm.generated, err = NewCounter(m, "estudio_engagements_generated_total", "Recurring engagements generated", "{engagements}"); err != nil {
		return nil, err
	}
	if bm.qualityWarnings, err = NewCounter(m, "estudio_data_quality_warnings_total", "Recurring engagements billed at zero", "{warnings}"); err != nil {
		return nil, err
	}
	if bm.openGauge, err = NewGauge(m, "estudio_engagements_open", "Open engagements by status", "{engagements}"); err != nil {
		return nil, err
	}
	if bm.overdueGauge, err = NewGauge(m, "estudio_engagements_overdue", "Pending engagements past their due date", "{engagements}"); err != nil {
		return nil, err
	}
	if bm.generationTime, err = NewHistogram(m, "estudio_monthly_generation_duration_seconds",
		"Duration of a monthly generation batch", "s", JobDurationBuckets...); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordPayment counts one payment and its amount
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal) {
	owner := AttrOwnerID.String(ownerID.String())
	bm.payments.Inc(ctx, owner)
	bm.paymentCents.Add(ctx, amount.Shift(2).Round(0).IntPart(), owner)
}

// RecordEngagementsGenerated counts engagements produced by one generation run
func (bm *BusinessMetrics) RecordEngagementsGenerated(ctx context.Context, ownerID uuid.UUID, trigger engagement.Trigger, count int) {
	bm.generated.Add(ctx, int64(count),
		AttrOwnerID.String(ownerID.String()),
		AttrTrigger.String(string(trigger)),
	)
}

// RecordDataQualityWarnings counts zero-total recurring engagements found by a run
func (bm *BusinessMetrics) RecordDataQualityWarnings(ctx context.Context, ownerID uuid.UUID, count int) {
	bm.qualityWarnings.Add(ctx, int64(count), AttrOwnerID.String(ownerID.String()))
}

// RecordGenerationBatch records how long a scheduled batch took
func (bm *BusinessMetrics) RecordGenerationBatch(ctx context.Context, trigger engagement.Trigger, d time.Duration) {
	bm.generationTime.RecordDuration(ctx, d, AttrTrigger.String(string(trigger)))
}

// StartPeriodicCollection refreshes the open-engagement gauges every
// interval until Stop or ctx is done. Only the first call has effect.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm.provider == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	bm.runOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			bm.Collect(ctx)
			for {
				select {
				case <-bm.stopCh:
					return
				case <-ctx.Done():
					return
				case <-ticker.C:
					bm.Collect(ctx)
				}
			}
		}()
	})
}

// Collect records one round of gauges.
func (bm *BusinessMetrics) Collect(ctx context.Context) {
	if bm.provider == nil {
		return
	}
	snaps, err := bm.provider.Snapshot(ctx, bm.today())
	if err != nil {
		bm.logger.Warn("Failed to collect ledger gauges", zap.Error(err))
		return
	}
	for _, s := range snaps {
		owner := AttrOwnerID.String(s.OwnerID.String())
		bm.openGauge.Record(ctx, s.Pending, owner, AttrStatus.String(string(engagement.StatusPending)))
		bm.openGauge.Record(ctx, s.InProgress, owner, AttrStatus.String(string(engagement.StatusInProgress)))
		bm.overdueGauge.Record(ctx, s.Overdue, owner)
	}
}

// Stop ends periodic collection
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() { close(bm.stopCh) })
}
