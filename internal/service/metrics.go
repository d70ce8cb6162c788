package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	swipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipes_total",
			Help: "Swipe requests by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	feedAssemblyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_assembly_seconds",
			Help:    "Time to serve a feed page",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"source"}, // cache, assembled
	)

	feedDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_degraded_total",
			Help: "Feed requests served without an optional lane",
		},
		[]string{"lane"}, // sponsored, stories, interactions
	)

	malformedItemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_malformed_items_total",
			Help: "Candidate posts that could not be scored",
		},
	)
)
