package dto

// Percentiles of the random-baseline return distribution.
type Percentiles struct {
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// RandomBaselineResult is the Monte Carlo "chance" distribution. All return
// figures are percentages. Generated fresh per validation run.
type RandomBaselineResult struct {
	Trials          int         `json:"trials"`
	TradesPerTrial  int         `json:"tradesPerTrial"`
	StartingCapital float64     `json:"startingCapital"`
	Mean            float64     `json:"mean"`
	Stdev           float64     `json:"stdev"`
	Min             float64     `json:"min"`
	Max             float64     `json:"max"`
	Percentiles     Percentiles `json:"percentiles"`
	Distribution    []float64   `json:"distribution"`
}

// Summary strips the full distribution for persistence in deliverables.
func (r *RandomBaselineResult) Summary() *BaselineSummary {
	return &BaselineSummary{
		Trials:         r.Trials,
		TradesPerTrial: r.TradesPerTrial,
		Mean:           r.Mean,
		Stdev:          r.Stdev,
		Percentiles:    r.Percentiles,
	}
}

// BaselineSummary is the persisted subset of a RandomBaselineResult.
type BaselineSummary struct {
	Trials         int         `json:"trials"`
	TradesPerTrial int         `json:"tradesPerTrial"`
	Mean           float64     `json:"mean"`
	Stdev          float64     `json:"stdev"`
	Percentiles    Percentiles `json:"percentiles"`
}

// SignificanceResult compares an actual return against the random baseline.
type SignificanceResult struct {
	Sigma          float64 `json:"sigma"`
	PValue         float64 `json:"pValue"`
	Percentile     float64 `json:"percentile"`
	Interpretation string  `json:"interpretation"`
}
