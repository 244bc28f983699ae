package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/estudio-contable/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// DBInstrumentation traces GORM statements through otelgorm, flags slow
// queries and exports pool statistics.
type DBInstrumentation struct {
	cfg      config.TelemetryConfig
	logger   *zap.Logger
	duration *Histogram
}

// InstrumentDB registers the tracing plugin and the timing callbacks on db.
// meter may be nil when metrics are disabled.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, meter metric.Meter, logger *zap.Logger) (*DBInstrumentation, error) {
	in := &DBInstrumentation{cfg: cfg, logger: logger.Named("db")}

	if cfg.DBTraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !cfg.DBLogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, fmt.Errorf("failed to register otelgorm: %w", err)
		}
	}

	if meter != nil {
		h, err := NewHistogram(meter, "estudio_db_query_duration_seconds",
			"Duration of database statements", "s",
			0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5)
		if err != nil {
			return nil, err
		}
		in.duration = h
		if err := in.observePool(db, meter); err != nil {
			return nil, err
		}
	}

	if err := in.registerCallbacks(db); err != nil {
		return nil, err
	}
	in.logger.Info("Database instrumentation registered",
		zap.Bool("tracing", cfg.DBTraceEnabled),
		zap.Duration("slow_query_threshold", cfg.DBSlowQueryThresh),
	)
	return in, nil
}

func (in *DBInstrumentation) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	steps := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, s := range steps {
		if err := s.before("telemetry:before_"+s.op, markStart); err != nil {
			return fmt.Errorf("failed to register %s timing callback: %w", s.op, err)
		}
		if err := s.after("telemetry:after_"+s.op, in.afterStatement(s.op)); err != nil {
			return fmt.Errorf("failed to register %s timing callback: %w", s.op, err)
		}
	}
	return nil
}

func markStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (in *DBInstrumentation) afterStatement(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		if in.duration != nil {
			in.duration.RecordDuration(ctx, elapsed,
				attribute.String("db.operation", op),
				attribute.String("db.table", db.Statement.Table),
			)
		}

		if in.cfg.DBSlowQueryThresh <= 0 || elapsed < in.cfg.DBSlowQueryThresh {
			return
		}
		span := trace.SpanFromContext(ctx)
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
		)
		fields := []zap.Field{
			zap.String("operation", op),
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", db.Statement.RowsAffected),
		}
		if in.cfg.DBLogFullSQL {
			fields = append(fields, zap.String("sql", db.Statement.SQL.String()))
		}
		in.logger.Warn("Slow query", fields...)
	}
}

func (in *DBInstrumentation) observePool(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	conns, err := meter.Int64ObservableGauge("estudio_db_pool_connections",
		metric.WithDescription("Database pool connections by state"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("estudio_db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{waits}"))
	if err != nil {
		return fmt.Errorf("failed to create pool wait counter: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		st := sqlDB.Stats()
		o.ObserveInt64(conns, int64(st.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(conns, int64(st.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(conns, int64(st.MaxOpenConnections), metric.WithAttributes(AttrDBPoolState.String("max")))
		o.ObserveInt64(waits, st.WaitCount)
		return nil
	}, conns, waits)
	if err != nil {
		return fmt.Errorf("failed to register pool callback: %w", err)
	}
	return nil
}
