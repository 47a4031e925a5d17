package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_generated_total",
			Help: "Total number of reports generated successfully",
		},
		[]string{"template"},
	)

	ReportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_failures_total",
			Help: "Total number of failed report generations",
		},
		[]string{"stage", "error_code"},
	)

	ReportStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "report_stage_duration_seconds",
			Help: "Duration of report pipeline stages in seconds",
		},
		[]string{"stage"},
	)

	BrandStoreWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "brand_store_writes_total",
			Help: "Total number of brand store persist operations",
		},
	)
)
