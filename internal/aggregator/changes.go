package aggregator

import "ads-insights-go/internal/types"

// ComputeChanges compares every metric present in both vectors.
//
// Percent change is 0 when the baseline is 0. That makes a zero baseline
// indistinguishable from no movement, but keeps Inf/NaN out of the rule thresholds.
func ComputeChanges(baseline, comparison types.MetricVector) types.ChangeSet {
	cmp := map[string]float64{}
	for _, nv := range comparison.Values() {
		cmp[nv.Name] = nv.Value
	}
	changes := types.ChangeSet{}
	for _, nv := range baseline.Values() {
		c, ok := cmp[nv.Name]
		if !ok {
			continue
		}
		changes[nv.Name] = Change(nv.Value, c)
	}
	return changes
}

// Change builds the record for one metric.
func Change(baseline, comparison float64) types.ChangeRecord {
	pct := 0.0
	if baseline != 0 {
		pct = (comparison - baseline) / baseline * 100
	}
	return types.ChangeRecord{
		Baseline:       baseline,
		Comparison:     comparison,
		AbsoluteChange: comparison - baseline,
		PercentChange:  pct,
		Direction:      direction(pct),
	}
}

func direction(pct float64) types.Direction {
	switch {
	case pct > 0:
		return types.DirectionUp
	case pct < 0:
		return types.DirectionDown
	default:
		return types.DirectionFlat
	}
}
