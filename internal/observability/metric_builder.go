package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// durationBucketBoundaries covers 5ms to 2min: a git invocation is usually
// well under a second, a large patch session can take much longer.
var durationBucketBoundaries = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// metricBuilder creates the hunkstage instruments on one meter and keeps the
// first creation error, so a constructor checks once at the end.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func newMetricBuilder(mt metric.Meter) *metricBuilder {
	return &metricBuilder{meter: mt}
}

// count creates a counter of unit, e.g. "{process}" or "{hunk}".
func (b *metricBuilder) count(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.keep(name, err)

	return c
}

// seconds creates a wall-time histogram bucketed for git invocations.
func (b *metricBuilder) seconds(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	b.keep(name, err)

	return h
}

func (b *metricBuilder) keep(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create instrument %s: %w", name, err)
	}
}
