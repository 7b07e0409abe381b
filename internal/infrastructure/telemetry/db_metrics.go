package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PoolStatter is satisfied by *sql.DB.
type PoolStatter interface {
	Stats() sql.DBStats
}

// DBMetrics records query counts and latency through gorm callbacks and
// reports connection pool statistics on every collection.
type DBMetrics struct {
	queries       metric.Int64Counter
	duration      metric.Float64Histogram
	slowQueries   metric.Int64Counter
	poolCallback  metric.Registration
	slowThreshold time.Duration
}

const metricsStartKey contextKey = "metrics_query_start_time"

var (
	attrDBOperation = attribute.Key("db.operation")
	attrDBTable     = attribute.Key("db.table")
	attrDBOutcome   = attribute.Key("db.outcome")
)

// NewDBMetrics creates the query instruments and registers the pool stats
// callback against pool.
func NewDBMetrics(meter metric.Meter, pool PoolStatter, slowThreshold time.Duration) (*DBMetrics, error) {
	m := &DBMetrics{slowThreshold: slowThreshold}

	var err error
	if m.queries, err = meter.Int64Counter("db.client.queries",
		metric.WithDescription("Database statements executed"),
		metric.WithUnit("{query}"),
	); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("db.client.query.duration",
		metric.WithDescription("Database statement latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DBDurationBuckets...),
	); err != nil {
		return nil, err
	}
	if m.slowQueries, err = meter.Int64Counter("db.client.slow_queries",
		metric.WithDescription("Statements slower than the slow query threshold"),
		metric.WithUnit("{query}"),
	); err != nil {
		return nil, err
	}

	if pool != nil {
		if m.poolCallback, err = registerPoolStats(meter, pool); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func registerPoolStats(meter metric.Meter, pool PoolStatter) (metric.Registration, error) {
	open, err := meter.Int64ObservableGauge("db.pool.open_connections", metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	inUse, err := meter.Int64ObservableGauge("db.pool.in_use", metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	idle, err := meter.Int64ObservableGauge("db.pool.idle", metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	maxOpen, err := meter.Int64ObservableGauge("db.pool.max_open", metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db.pool.wait_count",
		metric.WithDescription("Connections waited for since the pool was opened"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := pool.Stats()
		o.ObserveInt64(open, int64(s.OpenConnections))
		o.ObserveInt64(inUse, int64(s.InUse))
		o.ObserveInt64(idle, int64(s.Idle))
		o.ObserveInt64(maxOpen, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, open, inUse, idle, maxOpen, waits)
}

// Register installs the timing callbacks on db.
func (m *DBMetrics) Register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("metrics:before_create", m.before),
		cb.Query().Before("gorm:query").Register("metrics:before_query", m.before),
		cb.Update().Before("gorm:update").Register("metrics:before_update", m.before),
		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", m.before),
		cb.Row().Before("gorm:row").Register("metrics:before_row", m.before),
		cb.Raw().Before("gorm:raw").Register("metrics:before_raw", m.before),
		cb.Create().After("gorm:create").Register("metrics:after_create", m.after("create")),
		cb.Query().After("gorm:query").Register("metrics:after_query", m.after("select")),
		cb.Update().After("gorm:update").Register("metrics:after_update", m.after("update")),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", m.after("delete")),
		cb.Row().After("gorm:row").Register("metrics:after_row", m.after("select")),
		cb.Raw().After("gorm:raw").Register("metrics:after_raw", m.after("raw")),
	)
}

// Close stops reporting pool statistics.
func (m *DBMetrics) Close() error {
	if m == nil || m.poolCallback == nil {
		return nil
	}
	return m.poolCallback.Unregister()
}

func (m *DBMetrics) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, metricsStartKey, time.Now())
	}
}

func (m *DBMetrics) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(metricsStartKey).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)

		outcome := "ok"
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			outcome = "error"
		}
		attrs := metric.WithAttributes(
			attrDBOperation.String(operation),
			attrDBTable.String(db.Statement.Table),
			attrDBOutcome.String(outcome),
		)

		m.queries.Add(ctx, 1, attrs)
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
		if m.slowThreshold > 0 && elapsed > m.slowThreshold {
			m.slowQueries.Add(ctx, 1, attrs)
		}
	}
}

// RegisterDBMetrics wires query and pool metrics for db using the provider's
// meter. It does nothing when metrics are disabled.
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, slowThreshold time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if !mp.IsEnabled() {
		return nil, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	m, err := NewDBMetrics(mp.Meter("invoicedash/db"), sqlDB, slowThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to create database metrics: %w", err)
	}
	if err := m.Register(db); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("failed to register database metrics: %w", err)
	}
	logger.Info("Database metrics enabled", zap.Duration("slow_query_threshold", slowThreshold))
	return m, nil
}
