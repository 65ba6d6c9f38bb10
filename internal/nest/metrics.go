package nest

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/graphite-go/nest"

// metrics 记录命中、修改与落盘次数。未注入 MeterProvider 时使用全局（默认 noop）。
type metrics struct {
	lookups   metric.Int64Counter
	mutations metric.Int64Counter
	writes    metric.Int64Counter
	written   metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	lookups, err := meter.Int64Counter(
		"nest.lookups",
		metric.WithDescription("Number of key lookups, split by hit/miss"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	mutations, err := meter.Int64Counter(
		"nest.mutations",
		metric.WithDescription("Number of applied add/set/remove operations"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, err
	}

	writes, err := meter.Int64Counter(
		"nest.writes",
		metric.WithDescription("Number of cache files written"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	written, err := meter.Int64Counter(
		"nest.written_bytes",
		metric.WithDescription("Bytes written to cache files"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		lookups:   lookups,
		mutations: mutations,
		writes:    writes,
		written:   written,
	}, nil
}

// mustMetrics 在 meter 无法创建仪表时退回 noop，指标永远不影响缓存本身。
func mustMetrics(meter metric.Meter) *metrics {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	m, err := newMetrics(meter)
	if err != nil {
		m, _ = newMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}
	return m
}

func (m *metrics) recordLookup(name string, hit bool) {
	m.lookups.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("nest.name", name),
		attribute.Bool("hit", hit),
	))
}

func (m *metrics) recordMutation(name, op string) {
	m.mutations.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("nest.name", name),
		attribute.String("op", op),
	))
}

func (m *metrics) recordWrite(name string, size int) {
	opt := metric.WithAttributes(attribute.String("nest.name", name))
	m.writes.Add(context.Background(), 1, opt)
	m.written.Add(context.Background(), int64(size), opt)
}
