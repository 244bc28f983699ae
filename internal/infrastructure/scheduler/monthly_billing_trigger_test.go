package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingGenerator struct {
	mu    sync.Mutex
	dates []time.Time
	err   error
}

func (g *recordingGenerator) GenerateForAllOwners(ctx context.Context, date time.Time) (*appeng.BatchSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dates = append(g.dates, date)
	if g.err != nil {
		return nil, g.err
	}
	return &appeng.BatchSummary{Date: date, Owners: 2, OwnersWithRows: 1, Generated: 3, Skipped: 1}, nil
}

func (g *recordingGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.dates)
}

func TestTriggerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultTriggerConfig().Validate())

	cfg := DefaultTriggerConfig()
	cfg.BillingDay = 31
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultTriggerConfig()
	cfg.BillingHour = 24
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultTriggerConfig()
	cfg.CheckInterval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultTriggerConfig()
	cfg.BillingHour, cfg.BillingMinute = 23, 30
	cfg.CheckInterval = 45 * time.Minute
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "no tick could land before midnight")
	cfg.CheckInterval = 30 * time.Minute
	assert.NoError(t, cfg.Validate())
}

func TestMonthlyBillingTrigger_FiresOncePerBillingDay(t *testing.T) {
	cfg := DefaultTriggerConfig()
	cfg.BillingHour, cfg.BillingMinute = 9, 30
	gen := &recordingGenerator{}
	trigger, err := NewMonthlyBillingTrigger(cfg, gen, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	trigger.now = func() time.Time { return time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC) }
	assert.False(t, trigger.checkAndTrigger(ctx), "wrong day")

	trigger.now = func() time.Time { return time.Date(2025, 6, 1, 9, 29, 59, 0, time.UTC) }
	assert.False(t, trigger.checkAndTrigger(ctx), "before billing time")

	trigger.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 30, 0, time.UTC) }
	assert.True(t, trigger.checkAndTrigger(ctx))
	assert.False(t, trigger.checkAndTrigger(ctx), "already ran today")

	trigger.now = func() time.Time { return time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC) }
	assert.False(t, trigger.checkAndTrigger(ctx), "later ticks of the same day")

	require.Equal(t, 1, gen.calls())
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), gen.dates[0])

	trigger.now = func() time.Time { return time.Date(2025, 7, 1, 9, 30, 5, 0, time.UTC) }
	assert.True(t, trigger.checkAndTrigger(ctx))
	assert.Equal(t, 2, gen.calls())
}

func TestMonthlyBillingTrigger_CoarseIntervalStillFires(t *testing.T) {
	cfg := DefaultTriggerConfig()
	cfg.CheckInterval = 5 * time.Minute
	gen := &recordingGenerator{}
	trigger, err := NewMonthlyBillingTrigger(cfg, gen, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	// ticks aligned to a process start at 23:57:30 skip the 00:00 minute
	tick := time.Date(2025, 5, 31, 23, 57, 30, 0, time.UTC)
	fired := 0
	for i := 0; i < 12; i++ {
		now := tick
		trigger.now = func() time.Time { return now }
		if trigger.checkAndTrigger(ctx) {
			fired++
			assert.Equal(t, time.Date(2025, 6, 1, 0, 2, 30, 0, time.UTC), now)
		}
		tick = tick.Add(cfg.CheckInterval)
	}
	assert.Equal(t, 1, fired)
	require.Equal(t, 1, gen.calls())
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), gen.dates[0])
}

func TestMonthlyBillingTrigger_TriggerNowLogsSummary(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gen := &recordingGenerator{}
	trigger, err := NewMonthlyBillingTrigger(DefaultTriggerConfig(), gen, zap.New(core))
	require.NoError(t, err)

	summary, err := trigger.TriggerNow(context.Background(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Generated)

	entries := logs.FilterMessage("Monthly billing generation finished").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 3, entries[0].ContextMap()["generated"])
	assert.Equal(t, "1/3/2025", entries[0].ContextMap()["date"])
}

type batchRecorder struct {
	trigger engagement.Trigger
	calls   int
}

func (r *batchRecorder) RecordGenerationBatch(_ context.Context, trigger engagement.Trigger, _ time.Duration) {
	r.trigger = trigger
	r.calls++
}

func TestMonthlyBillingTrigger_RecordsBatchDuration(t *testing.T) {
	trigger, err := NewMonthlyBillingTrigger(DefaultTriggerConfig(), &recordingGenerator{}, nil)
	require.NoError(t, err)
	rec := &batchRecorder{}
	trigger.SetRecorder(rec)

	_, err = trigger.TriggerNow(context.Background(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, engagement.TriggerCron, rec.trigger)
}

func TestMonthlyBillingTrigger_TriggerNowError(t *testing.T) {
	gen := &recordingGenerator{err: errors.New("db down")}
	trigger, err := NewMonthlyBillingTrigger(DefaultTriggerConfig(), gen, nil)
	require.NoError(t, err)

	_, err = trigger.TriggerNow(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestMonthlyBillingTrigger_StartStop(t *testing.T) {
	cfg := DefaultTriggerConfig()
	cfg.CheckInterval = 10 * time.Millisecond
	trigger, err := NewMonthlyBillingTrigger(cfg, &recordingGenerator{}, nil)
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(ctx))
	require.NoError(t, trigger.Stop(ctx))
}
