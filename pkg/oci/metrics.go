package oci

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	packagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_oci_packages_total",
			Help: "Total number of bundle packaging operations by status.",
		},
		[]string{"status"},
	)

	packageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoconfig_oci_package_duration_seconds",
			Help:    "Time spent packaging bundles into OCI layout stores.",
			Buckets: prometheus.DefBuckets,
		},
	)

	pushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_oci_pushes_total",
			Help: "Total number of artifact pushes by status.",
		},
		[]string{"status"},
	)

	pushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoconfig_oci_push_duration_seconds",
			Help:    "Time spent pushing artifacts to registries.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)
