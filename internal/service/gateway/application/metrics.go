// internal/service/gateway/application/metrics.go

package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sagasTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_sagas_total",
		Help: "Sagas executed by the coordinator, by operation and outcome.",
	}, []string{"operation", "outcome"})

	sagaCompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_saga_compensations_total",
		Help: "Compensation runs triggered by sagas that failed after a mutating step.",
	}, []string{"operation"})
)
