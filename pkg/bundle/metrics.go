package bundle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bundleWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_bundle_writes_total",
			Help: "Total number of bundle writes by status.",
		},
		[]string{"status"},
	)

	bundleWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoconfig_bundle_write_duration_seconds",
			Help:    "Time spent writing bundle directories.",
			Buckets: prometheus.DefBuckets,
		},
	)

	bundleBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autoconfig_bundle_bytes_written_total",
			Help: "Total bytes written into bundle directories.",
		},
	)
)
