package script

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Script compilation metrics
	compileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoconfig_compile_duration_seconds",
			Help:    "Duration of script compilation in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		},
	)

	compileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_compile_total",
			Help: "Total number of script compilations",
		},
		[]string{"status"}, // success, invalid, or error
	)
)
