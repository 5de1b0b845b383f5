// File: internal/infra/metrics/register.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors declared across this package queue themselves here from init()
// and hit the default registry together in MustRegister. Keeps registration
// single-shot even when tests build the wiring more than once.
var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

func enqueue(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister registers every queued collector exactly once. Call it once
// at startup, before the first update is handled.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(pending...)
	})
}
