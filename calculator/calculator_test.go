package calculator_test

import (
	"testing"

	"capacity-planner/calculator"
	"capacity-planner/models"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestComputeTeamMetrics(t *testing.T) {
	tests := map[string]struct {
		input            models.PeriodicInput
		base             float64
		standard         float64
		expectedRequired float64
		expectedActual   float64
	}{
		"PlainMixSlice": {
			// 50% of 1000 minutes at 100 minutes per head
			input:            models.PeriodicInput{VolumeMixPercent: fp(50)},
			base:             1000,
			standard:         100,
			expectedRequired: 5,
			expectedActual:   0,
		},
		"ShrinkageAndOccupancyDiscount": {
			// effective = 100 * 0.80 * (1 - 0.25) = 60
			input: models.PeriodicInput{
				VolumeMixPercent: fp(100),
				OccupancyPercent: fp(80),
				ShrinkagePercent: fp(25),
			},
			base:             1200,
			standard:         100,
			expectedRequired: 20,
			expectedActual:   0,
		},
		"OnlyShrinkageEnteredNoDiscount": {
			input: models.PeriodicInput{
				VolumeMixPercent: fp(50),
				ShrinkagePercent: fp(25),
			},
			base:             1000,
			standard:         100,
			expectedRequired: 5,
			expectedActual:   0,
		},
		"ShiftMinutesOverrideStandard": {
			input: models.PeriodicInput{
				VolumeMixPercent: fp(50),
				ShiftMinutes:     fp(200),
			},
			base:             1000,
			standard:         100,
			expectedRequired: 2.5,
			expectedActual:   0,
		},
		"NonPositiveShiftMinutesIgnored": {
			input: models.PeriodicInput{
				VolumeMixPercent: fp(50),
				ShiftMinutes:     fp(-30),
			},
			base:             1000,
			standard:         100,
			expectedRequired: 5,
			expectedActual:   0,
		},
		"MixClampedToHundred": {
			input:            models.PeriodicInput{VolumeMixPercent: fp(150)},
			base:             1000,
			standard:         100,
			expectedRequired: 10,
			expectedActual:   0,
		},
		"NegativeMixClampedToZero": {
			input:            models.PeriodicInput{VolumeMixPercent: fp(-10)},
			base:             1000,
			standard:         100,
			expectedRequired: 0,
			expectedActual:   0,
		},
		"NegativeBaseClampedToZero": {
			input:            models.PeriodicInput{VolumeMixPercent: fp(50)},
			base:             -500,
			standard:         100,
			expectedRequired: 0,
			expectedActual:   0,
		},
		"MissingMixMeansNoRequirement": {
			input:            models.PeriodicInput{ActualHC: fp(8)},
			base:             1000,
			standard:         100,
			expectedRequired: 0,
			expectedActual:   8,
		},
		"FullShrinkageZeroesEffective": {
			input: models.PeriodicInput{
				VolumeMixPercent: fp(50),
				OccupancyPercent: fp(100),
				ShrinkagePercent: fp(100),
			},
			base:             1000,
			standard:         100,
			expectedRequired: 0,
			expectedActual:   0,
		},
		"NegativeActualReadsAsZero": {
			input:            models.PeriodicInput{VolumeMixPercent: fp(50), ActualHC: fp(-3)},
			base:             1000,
			standard:         100,
			expectedRequired: 5,
			expectedActual:   0,
		},
		"EmptyInput": {
			input:            models.PeriodicInput{},
			base:             1000,
			standard:         100,
			expectedRequired: 0,
			expectedActual:   0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := calculator.ComputeTeamMetrics(tt.input, tt.base, tt.standard)
			assert.InDelta(t, tt.expectedRequired, m.RequiredHC, 1e-9)
			assert.InDelta(t, tt.expectedActual, m.ActualHC, 1e-9)
			assert.InDelta(t, tt.expectedActual-tt.expectedRequired, m.OverUnderHC, 1e-9)
		})
	}
}
