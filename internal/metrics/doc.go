// Package metrics exports factory events to Prometheus.
//
// A Collector is passed to factories as their observer:
//
//	reg := prometheus.NewRegistry()
//	collector, err := metrics.NewCollector(reg)
//	f, err := fixtures.New(stores, fixtures.WithObserver(collector))
//
// Short-lived runs push the registry to a Pushgateway before exiting:
//
//	err = metrics.Push(ctx, "http://localhost:9091", "fixturegen", reg, nil)
package metrics
