package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "entityfactory"

// ErrGroupingLabel is returned by Push for a grouping key that is already a
// label of a collector metric. The Pushgateway would reject the push.
var ErrGroupingLabel = errors.New("metrics: grouping key clashes with a metric label")

// Labels carried by the collector metrics.
var labels = map[string]struct{}{
	"entity":    {},
	"result":    {},
	"op":        {},
	"attribute": {},
}

// Collector records factory events as Prometheus metrics. It implements
// factory.Observer.
type Collector struct {
	built      *prometheus.CounterVec
	persisted  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	collisions *prometheus.CounterVec
	exhausted  *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		built: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_built_total",
			Help:      "Entities assembled, by entity and result.",
		}, []string{"entity", "result"}),
		persisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_persisted_total",
			Help:      "Entities saved through a store, by entity and result.",
		}, []string{"entity", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent building or persisting one entity.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"entity", "op"}),
		collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unique_collisions_total",
			Help:      "Generated values rejected because they were already used.",
		}, []string{"entity", "attribute"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uniqueness_exhausted_total",
			Help:      "Unique attributes that ran out of attempts.",
		}, []string{"entity", "attribute"}),
	}

	for _, m := range []prometheus.Collector{c.built, c.persisted, c.duration, c.collisions, c.exhausted} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return c, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// EntityBuilt counts one build.
func (c *Collector) EntityBuilt(entity string, took time.Duration, err error) {
	c.built.WithLabelValues(entity, result(err)).Inc()
	c.duration.WithLabelValues(entity, "build").Observe(took.Seconds())
}

// EntityPersisted counts one persist. Its duration includes the build.
func (c *Collector) EntityPersisted(entity string, took time.Duration, err error) {
	c.persisted.WithLabelValues(entity, result(err)).Inc()
	c.duration.WithLabelValues(entity, "persist").Observe(took.Seconds())
}

// UniqueCollisions adds n rejected values.
func (c *Collector) UniqueCollisions(entity, attribute string, n int) {
	c.collisions.WithLabelValues(entity, attribute).Add(float64(n))
}

// UniquenessExhausted counts one exhausted attribute.
func (c *Collector) UniquenessExhausted(entity, attribute string) {
	c.exhausted.WithLabelValues(entity, attribute).Inc()
}

// Push sends everything gathered by g to a Pushgateway, replacing the
// previous push for job. A batch run calls it once before exiting.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer, grouping map[string]string) error {
	if url == "" {
		return errors.New("metrics: pushgateway url is required")
	}
	p := push.New(url, job).Gatherer(g)
	for k, v := range grouping {
		if _, ok := labels[k]; ok {
			return fmt.Errorf("%w: %s", ErrGroupingLabel, k)
		}
		p = p.Grouping(k, v)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("metrics: push: %w", err)
	}
	return nil
}
