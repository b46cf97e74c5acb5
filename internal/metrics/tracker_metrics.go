package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion results.
const (
	ResultCreated            = "created"
	ResultUpdated            = "updated"
	ResultInvalidURL         = "invalid_url"
	ResultScrapeFailed       = "scrape_failed"
	ResultInvalidObservation = "invalid_observation"
	ResultError              = "error"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricehawk_products_created_total",
		Help: "The total number of products created",
	})

	// Ingestions counts track requests by outcome.
	Ingestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricehawk_ingestions_total",
		Help: "The total number of track requests by result",
	}, []string{"result"})

	// ScrapeDuration observes scraper round trips.
	ScrapeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricehawk_scrape_duration_seconds",
		Help:    "Duration of scraper calls",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// ScrapeCacheLookups counts scrape cache lookups by outcome (hit, miss, error).
	ScrapeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricehawk_scrape_cache_lookups_total",
		Help: "The total number of scrape cache lookups by outcome",
	}, []string{"outcome"})

	// AllTimeLows counts observations that matched or set a new lowest price.
	AllTimeLows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricehawk_all_time_lows_total",
		Help: "The total number of observations at the all-time low",
	})

	// Predictions counts predictor calls by outcome (ok, insufficient_data, error, skipped).
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricehawk_predictions_total",
		Help: "The total number of prediction attempts by outcome",
	}, []string{"outcome"})

	// EventsPublished counts outbox events by final status.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricehawk_outbox_events_total",
		Help: "The total number of outbox events handled by status",
	}, []string{"status"})
)
