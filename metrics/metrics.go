// Package metrics provides Prometheus observability metrics for the capacity
// planner. It includes Critical and Important metrics for business and
// operational visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Business Impact Visibility
// =============================================================================

// RequiredHeadcountTotal tracks the total required headcount across the
// projected window, labeled by business unit.
var RequiredHeadcountTotal = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "required_headcount_total",
	Help:      "Total required headcount across all projected LOBs and periods",
}, []string{"business_unit"})

// ActualHeadcountTotal tracks the total actual headcount across the
// projected window, labeled by business unit.
var ActualHeadcountTotal = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "actual_headcount_total",
	Help:      "Total actual headcount across all projected LOBs and periods",
}, []string{"business_unit"})

// UnderstaffedPeriods tracks LOB/period cells projected with negative
// over/under headcount. High values indicate hiring gaps.
var UnderstaffedPeriods = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "understaffed_periods",
	Help:      "Number of LOB/period cells where actual headcount is below required",
}, []string{"business_unit"})

// EditsApplied counts store mutations that changed the dataset.
var EditsApplied = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "store",
	Name:      "edits_applied_total",
	Help:      "Count of cell edits applied to the capacity store, by field",
}, []string{"field"})

// EditsRejected counts store mutations dropped as no-ops (non-numeric text,
// stale LOB or team references).
var EditsRejected = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "store",
	Name:      "edits_rejected_total",
	Help:      "Count of cell edits rejected as no-ops, by reason",
}, []string{"reason"})

// RedistributionRuns counts volume-mix redistributions across sibling teams.
var RedistributionRuns = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "store",
	Name:      "redistribution_runs_total",
	Help:      "Count of volume-mix redistribution passes across sibling teams",
})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total CSV records successfully parsed",
})

// ProjectionDurationSeconds tracks time to project the visible row set.
var ProjectionDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "projection",
	Name:      "duration_seconds",
	Help:      "Time taken to project the filtered capacity rows",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// ProjectionRows tracks the number of rows produced per projection.
var ProjectionRows = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "projection",
	Name:      "rows",
	Help:      "Number of capacity rows produced per projection",
	Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
})

// ProjectionPeriods tracks the width of the projected period window.
var ProjectionPeriods = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "projection",
	Name:      "periods",
	Help:      "Number of periods included in the last projection window",
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetProjectionGauges resets all projection gauges before a new run.
// Call this at the start of Project.
func ResetProjectionGauges() {
	ProjectionPeriods.Set(0)
	RequiredHeadcountTotal.Reset()
	ActualHeadcountTotal.Reset()
	UnderstaffedPeriods.Reset()
}
