package autoconf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request validation metrics
	validationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_validation_total",
			Help: "Total number of request validations by outcome",
		},
		[]string{"status"}, // valid or invalid
	)
)
