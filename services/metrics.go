package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	trophiesAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trophies_awarded_total",
			Help: "Total number of trophies persisted",
		},
		[]string{"trophy_type"},
	)
	trophyComputeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trophy_compute_errors_total",
			Help: "Total number of trophy computations aborted by a store error",
		},
	)
)

func init() {
	prometheus.MustRegister(trophiesAwarded, trophyComputeErrors)
}
