package container

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imageBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_image_builds_total",
			Help: "Total number of autoconfig image builds by status.",
		},
		[]string{"status"},
	)

	imageBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoconfig_image_build_duration_seconds",
			Help:    "Time spent building autoconfig images, pull included.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_extractions_total",
			Help: "Total number of extraction runs by status.",
		},
		[]string{"status"},
	)

	extractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoconfig_extraction_duration_seconds",
			Help:    "Time spent on extraction runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	packageInstallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_package_installs_total",
			Help: "Total number of package install runs by status.",
		},
		[]string{"status"},
	)

	packageInstallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoconfig_package_install_duration_seconds",
			Help:    "Time spent installing packages into base images.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_verifications_total",
			Help: "Total number of output verifications by status.",
		},
		[]string{"status"},
	)
)
