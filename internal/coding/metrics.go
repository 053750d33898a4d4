package coding

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var executions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ryan",
		Subsystem: "code",
		Name:      "executions_total",
		Help:      "Code executions by language and outcome.",
	},
	[]string{"language", "result"},
)

var assists = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ryan",
		Subsystem: "code",
		Name:      "assists_total",
		Help:      "Model-backed debug, analyze and fix requests by outcome.",
	},
	[]string{"task", "result"},
)
