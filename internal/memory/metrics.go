package memory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ryan",
		Subsystem: "memory",
		Name:      "operations_total",
		Help:      "Memory store operations by operation and result.",
	},
	[]string{"op", "result"},
)

func observe(op string, ok bool) {
	result := "ok"
	if !ok {
		result = "miss"
	}
	operations.WithLabelValues(op, result).Inc()
}
