// Package calculator derives per-team headcount metrics from staffing inputs.
package calculator

import (
	"capacity-planner/models"
)

// ComputeTeamMetrics computes one team's required, actual, and over/under
// headcount for a period, given the parent LOB's total base required minutes
// and the planner's standard work minutes per period.
//
// Required headcount is the team's slice of the LOB's workload divided by the
// effective minutes one head contributes: shift minutes (or the standard) are
// discounted by occupancy and shrinkage when both are entered. Percentage
// inputs are clamped to [0,100] and all outputs are clamped to be >= 0, so
// the function is total for any well-formed input.
func ComputeTeamMetrics(in models.PeriodicInput, lobBaseRequiredMinutes, standardWorkMinutes float64) models.TeamPeriodicMetrics {
	base := lobBaseRequiredMinutes
	if base < 0 {
		base = 0
	}

	perHC := standardWorkMinutes
	if in.ShiftMinutes != nil && *in.ShiftMinutes > 0 {
		perHC = *in.ShiftMinutes
	}

	effective := perHC
	if in.ShrinkagePercent != nil && in.OccupancyPercent != nil {
		occupancy := clampPercent(*in.OccupancyPercent) / 100
		shrinkage := clampPercent(*in.ShrinkagePercent) / 100
		effective = perHC * occupancy * (1 - shrinkage)
	}

	var required float64
	if in.VolumeMixPercent != nil && effective > 0 {
		mix := clampPercent(*in.VolumeMixPercent) / 100
		required = base * mix / effective
	}
	if required < 0 {
		required = 0
	}

	// Missing actual headcount reads as 0, never null, so rollups stay
	// numerically well-defined.
	var actual float64
	if in.ActualHC != nil && *in.ActualHC > 0 {
		actual = *in.ActualHC
	}

	return models.TeamPeriodicMetrics{
		RequiredHC:  required,
		ActualHC:    actual,
		OverUnderHC: actual - required,
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
