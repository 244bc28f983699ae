package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// BatchGenerator runs the monthly generation for every owner
type BatchGenerator interface {
	GenerateForAllOwners(ctx context.Context, date time.Time) (*appeng.BatchSummary, error)
}

// BatchRecorder observes how long a batch took. Optional.
type BatchRecorder interface {
	RecordGenerationBatch(ctx context.Context, trigger engagement.Trigger, d time.Duration)
}

// TriggerConfig holds configuration for the monthly billing trigger
type TriggerConfig struct {
	BillingDay    int
	BillingHour   int
	BillingMinute int
	CheckInterval time.Duration
	JobTimeout    time.Duration
}

// DefaultTriggerConfig fires on the 1st at 00:00
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		BillingDay:    1,
		BillingHour:   0,
		BillingMinute: 0,
		CheckInterval: time.Minute,
		JobTimeout:    10 * time.Minute,
	}
}

// TriggerConfigFrom maps the scheduler section of the app config
func TriggerConfigFrom(cfg config.SchedulerConfig) TriggerConfig {
	return TriggerConfig{
		BillingDay:    cfg.BillingDay,
		BillingHour:   cfg.BillingHour,
		BillingMinute: cfg.BillingMinute,
		CheckInterval: cfg.CheckInterval,
		JobTimeout:    cfg.JobTimeout,
	}
}

// Validate rejects schedules that could never fire
func (c TriggerConfig) Validate() error {
	switch {
	case c.BillingDay < 1 || c.BillingDay > 28:
		return fmt.Errorf("%w: billing_day must be between 1 and 28", ErrInvalidConfig)
	case c.BillingHour < 0 || c.BillingHour > 23:
		return fmt.Errorf("%w: billing_hour must be between 0 and 23", ErrInvalidConfig)
	case c.BillingMinute < 0 || c.BillingMinute > 59:
		return fmt.Errorf("%w: billing_minute must be between 0 and 59", ErrInvalidConfig)
	case c.CheckInterval <= 0:
		return fmt.Errorf("%w: check_interval must be positive", ErrInvalidConfig)
	case c.CheckInterval > 24*time.Hour-c.billingOffset():
		// at least one tick must land between the billing time and midnight
		return fmt.Errorf("%w: check_interval %s leaves no tick after %02d:%02d on the billing day",
			ErrInvalidConfig, c.CheckInterval, c.BillingHour, c.BillingMinute)
	}
	return nil
}

func (c TriggerConfig) billingOffset() time.Duration {
	return time.Duration(c.BillingHour)*time.Hour + time.Duration(c.BillingMinute)*time.Minute
}

// MonthlyBillingTrigger fires the monthly generation once per billing day
type MonthlyBillingTrigger struct {
	config    TriggerConfig
	generator BatchGenerator
	recorder  BatchRecorder
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewMonthlyBillingTrigger creates a new trigger
func NewMonthlyBillingTrigger(cfg TriggerConfig, generator BatchGenerator, logger *zap.Logger) (*MonthlyBillingTrigger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultTriggerConfig().JobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthlyBillingTrigger{
		config:    cfg,
		generator: generator,
		logger:    logger.Named("monthly_billing_trigger"),
		now:       func() time.Time { return time.Now().In(shared.BusinessLocation()) },
	}, nil
}

// Start starts the ticker loop
func (t *MonthlyBillingTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Monthly billing trigger started",
		zap.Int("billing_day", t.config.BillingDay),
		zap.Int("billing_hour", t.config.BillingHour),
		zap.Int("billing_minute", t.config.BillingMinute),
		zap.Duration("check_interval", t.config.CheckInterval),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run, bounded by ctx
func (t *MonthlyBillingTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Monthly billing trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *MonthlyBillingTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger fires on the first tick of the billing day at or after the
// billing time, at most once per calendar day
func (t *MonthlyBillingTrigger) checkAndTrigger(ctx context.Context) bool {
	now := t.now()
	if now.Day() != t.config.BillingDay {
		return false
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(dayStart.Add(t.config.billingOffset())) {
		return false
	}

	currentDate := now.Format("2006-01-02")
	t.mu.Lock()
	if t.lastRunDate == currentDate {
		t.mu.Unlock()
		return false
	}
	t.lastRunDate = currentDate
	t.mu.Unlock()

	t.logger.Info("Triggering monthly billing generation", zap.String("date", currentDate))
	_, _ = t.TriggerNow(ctx, shared.DateOf(now))
	return true
}

// SetRecorder attaches a batch duration recorder
func (t *MonthlyBillingTrigger) SetRecorder(r BatchRecorder) {
	t.recorder = r
}

// TriggerNow runs the batch for date under the job timeout
func (t *MonthlyBillingTrigger) TriggerNow(ctx context.Context, date time.Time) (*appeng.BatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.JobTimeout)
	defer cancel()

	start := time.Now()
	summary, err := t.generator.GenerateForAllOwners(ctx, date)
	if err != nil {
		t.logger.Error("Monthly billing generation failed",
			zap.String("date", shared.FormatDMY(date)),
			zap.Error(err))
		return nil, err
	}

	elapsed := time.Since(start)
	if t.recorder != nil {
		t.recorder.RecordGenerationBatch(ctx, engagement.TriggerCron, elapsed)
	}

	fields := []zap.Field{
		zap.String("date", shared.FormatDMY(date)),
		zap.Int("owners", summary.Owners),
		zap.Int("owners_with_rows", summary.OwnersWithRows),
		zap.Int("generated", summary.Generated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", elapsed),
	}
	if summary.Failed > 0 {
		t.logger.Warn("Monthly billing generation finished with failures",
			append(fields, zap.Strings("errors", summary.Errors))...)
	} else {
		t.logger.Info("Monthly billing generation finished", fields...)
	}
	return summary, nil
}
