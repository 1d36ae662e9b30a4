package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	shelfIngest = "shelf_ingest"

	// Pipeline metrics
	itemsTotal = "items_total"
	runsTotal  = "runs_total"

	// Labels
	classLabel   = "class"
	outcomeLabel = "outcome"
)

var itemsTotalLabels = []string{
	classLabel,
	outcomeLabel,
}

var runsTotalLabels = []string{
	classLabel,
}

/**
* Metrics definition
**/
var itemsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: shelfIngest,
		Name:      itemsTotal,
		Help:      "number of processed items by terminal outcome",
	},
	itemsTotalLabels,
)

var runsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: shelfIngest,
		Name:      runsTotal,
		Help:      "number of ingestion runs started",
	},
	runsTotalLabels,
)

func IncreaseItemsTotalMetric(class, outcome string) {
	labels := prometheus.Labels{
		classLabel:   class,
		outcomeLabel: outcome,
	}
	itemsTotalMetric.With(labels).Inc()
}

func IncreaseRunsTotalMetric(class string) {
	labels := prometheus.Labels{
		classLabel: class,
	}
	runsTotalMetric.With(labels).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(itemsTotalMetric)
	prometheus.MustRegister(runsTotalMetric)
}
