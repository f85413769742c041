package service

import (
	"testing"

	"backtest-engine/internal/dto"

	"github.com/stretchr/testify/assert"
)

func baselineWith(mean, stdev float64, distribution []float64) *dto.RandomBaselineResult {
	return &dto.RandomBaselineResult{
		Trials:       len(distribution),
		Mean:         mean,
		Stdev:        stdev,
		Distribution: distribution,
	}
}

func TestComputeSignificance_SigmaBands(t *testing.T) {
	tests := []struct {
		name   string
		actual float64
		want   string
	}{
		{name: "three sigma", actual: 3.0, want: VerdictStrongSignal},
		{name: "just below three", actual: 2.999, want: VerdictSignal},
		{name: "two sigma", actual: 2.0, want: VerdictSignal},
		{name: "just below two", actual: 1.999, want: VerdictWeakSignal},
		{name: "one sigma", actual: 1.0, want: VerdictWeakSignal},
		{name: "zero sigma", actual: 0.0, want: VerdictNoSignal},
		{name: "negative", actual: -0.001, want: VerdictUnderperforming},
	}

	baseline := baselineWith(0, 1, []float64{-1, 0, 1})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeSignificance(tt.actual, baseline)
			assert.Equal(t, tt.want, result.Interpretation)
		})
	}
}

func TestComputeSignificance_Sigma(t *testing.T) {
	baseline := baselineWith(2, 4, []float64{-2, 0, 2, 4, 6})

	result := ComputeSignificance(10, baseline)

	assert.Equal(t, 2.0, result.Sigma)
	// No trial reached 10.
	assert.Equal(t, 0.0, result.PValue)
	assert.Equal(t, 100.0, result.Percentile)
}

func TestComputeSignificance_SymmetricDistribution(t *testing.T) {
	baseline := baselineWith(0, 1.5811, []float64{-2, -1, 1, 2})

	result := ComputeSignificance(0, baseline)

	assert.Equal(t, 0.5, result.PValue)
	assert.Equal(t, 50.0, result.Percentile)
	assert.Equal(t, VerdictNoSignal, result.Interpretation)
}

func TestComputeSignificance_ZeroStdev(t *testing.T) {
	baseline := baselineWith(1, 0, []float64{1, 1, 1})

	result := ComputeSignificance(5, baseline)

	assert.Equal(t, 0.0, result.Sigma)
	assert.Equal(t, VerdictNoSignal, result.Interpretation)
}

func TestComputeSignificance_EmptyDistribution(t *testing.T) {
	baseline := baselineWith(0, 1, nil)

	result := ComputeSignificance(2, baseline)

	assert.Equal(t, 2.0, result.Sigma)
	assert.Equal(t, 0.0, result.PValue)
	assert.Equal(t, 0.0, result.Percentile)
}

func TestComputeSignificance_Rounding(t *testing.T) {
	baseline := baselineWith(0, 3, []float64{-3, -1, 0, 1, 2, 3, 4})

	result := ComputeSignificance(1, baseline)

	assert.InDelta(t, 0.333, result.Sigma, 1e-9)
	assert.InDelta(t, 0.5714, result.PValue, 1e-9)
	assert.InDelta(t, 42.9, result.Percentile, 1e-9)
}
