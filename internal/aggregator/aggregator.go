package aggregator

import (
	"ads-insights-go/internal/types"
)

// Derive computes the per-row ratios. Zero denominators yield 0.
func Derive(r types.Row) types.RowMetrics {
	return types.RowMetrics{
		CTR:            ratio(r.Clicks, r.Impressions) * 100,
		CPC:            ratio(r.Spend, r.Clicks),
		CPM:            ratio(r.Spend, r.Impressions) * 1000,
		ConversionRate: ratio(r.Purchases, r.Clicks) * 100,
	}
}

// DeriveRows tags each row with window and its derived ratios.
func DeriveRows(rows []types.Row, window string) []types.DerivedRow {
	out := make([]types.DerivedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.DerivedRow{
			Date:       r.Date.Format(types.DateLayout),
			Window:     window,
			Spend:      r.Spend,
			Revenue:    r.Revenue,
			Dimensions: r.Dimensions,
			RowMetrics: Derive(r),
		})
	}
	return out
}

// Aggregate reduces rows to a metric vector. Ratios are taken over the sums,
// never averaged from per-row ratios. Empty input gives a zero vector marked
// NoData.
func Aggregate(rows []types.Row) types.MetricVector {
	if len(rows) == 0 {
		return types.MetricVector{NoData: true}
	}
	var m types.MetricVector
	for _, r := range rows {
		m.Spend += r.Spend
		m.Revenue += r.Revenue
		m.Impressions += r.Impressions
		m.Clicks += r.Clicks
		m.Purchases += r.Purchases
	}
	m.Rows = len(rows)
	m.ROAS = ratio(m.Revenue, m.Spend)
	m.CTR = ratio(m.Clicks, m.Impressions) * 100
	m.CPC = ratio(m.Spend, m.Clicks)
	m.CPM = ratio(m.Spend, m.Impressions) * 1000
	m.ConversionRate = ratio(m.Purchases, m.Clicks) * 100
	return m
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
