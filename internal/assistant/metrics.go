package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var chatRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ryan",
		Subsystem: "chat",
		Name:      "requests_total",
		Help:      "Chat messages by the route that answered them.",
	},
	[]string{"route"},
)
