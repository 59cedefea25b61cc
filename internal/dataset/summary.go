package dataset

import (
	"time"

	"ads-insights-go/internal/types"
)

// Summarize describes the loaded table and how many rows fell into each window.
func Summarize(rows []types.Row, baselineRows, comparisonRows int) types.DataSummary {
	ds := types.DataSummary{
		TotalRows:      len(rows),
		BaselineRows:   baselineRows,
		ComparisonRows: comparisonRows,
	}
	if len(rows) == 0 {
		return ds
	}
	lo, hi := rows[0].Date, rows[0].Date
	for _, r := range rows[1:] {
		if r.Date.Before(lo) {
			lo = r.Date
		}
		if r.Date.After(hi) {
			hi = r.Date
		}
	}
	ds.DateRange = types.DateRange{Min: lo.Format(types.DateLayout), Max: hi.Format(types.DateLayout)}
	return ds
}

// LatestDate returns the most recent row date, or the zero time for an empty table.
func LatestDate(rows []types.Row) time.Time {
	var latest time.Time
	for _, r := range rows {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest
}

// Quality counts suspicious values in the table. Skipped rows from loading are
// reported under missing_values["row"].
func Quality(t *Table) types.DataQuality {
	q := types.DataQuality{
		NegativeValues: map[string]int{
			"spend": 0, "revenue": 0, "clicks": 0, "impressions": 0, "purchases": 0,
		},
		MissingValues: map[string]int{},
	}
	if t == nil {
		return q
	}
	if t.Skipped > 0 {
		q.MissingValues["row"] = t.Skipped
	}
	for _, dim := range t.Dimensions {
		q.MissingValues[dim] = 0
	}
	for _, r := range t.Rows {
		if r.Spend == 0 {
			q.ZeroSpendRows++
		}
		if r.Impressions == 0 {
			q.ZeroImpressionsRows++
		}
		for col, v := range map[string]float64{
			"spend": r.Spend, "revenue": r.Revenue, "clicks": r.Clicks,
			"impressions": r.Impressions, "purchases": r.Purchases,
		} {
			if v < 0 {
				q.NegativeValues[col]++
			}
		}
		for _, dim := range t.Dimensions {
			if r.Dimensions[dim] == "" {
				q.MissingValues[dim]++
			}
		}
	}
	return q
}
