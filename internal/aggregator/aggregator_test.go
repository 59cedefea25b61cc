package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ads-insights-go/internal/types"
)

func date(s string) time.Time {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func row(d string, spend, impressions, clicks, purchases, revenue float64, dims ...string) types.Row {
	r := types.Row{
		Date: date(d), Spend: spend, Impressions: impressions,
		Clicks: clicks, Purchases: purchases, Revenue: revenue,
		Dimensions: map[string]string{},
	}
	for i := 0; i+1 < len(dims); i += 2 {
		r.Dimensions[dims[i]] = dims[i+1]
	}
	return r
}

func TestDerive_ZeroGuards(t *testing.T) {
	m := Derive(row("2025-01-01", 50, 0, 0, 0, 0))
	assert.Equal(t, types.RowMetrics{}, m)

	m = Derive(row("2025-01-01", 50, 10000, 200, 10, 0))
	assert.InDelta(t, 2.0, m.CTR, 1e-9)
	assert.InDelta(t, 0.25, m.CPC, 1e-9)
	assert.InDelta(t, 5.0, m.CPM, 1e-9)
	assert.InDelta(t, 5.0, m.ConversionRate, 1e-9)
}

func TestAggregate_UsesSumsNotAverages(t *testing.T) {
	rows := []types.Row{
		row("2025-01-01", 100, 1000, 100, 10, 500),
		row("2025-01-02", 300, 9000, 90, 3, 300),
	}
	m := Aggregate(rows)

	assert.Equal(t, 2, m.Rows)
	assert.Equal(t, 400.0, m.Spend)
	assert.Equal(t, 800.0, m.Revenue)
	assert.InDelta(t, 2.0, m.ROAS, 1e-9)
	assert.InDelta(t, 1.9, m.CTR, 1e-9) // 190/10000, not mean(10%, 1%)
	assert.InDelta(t, 400.0/190.0, m.CPC, 1e-9)
	assert.InDelta(t, 40.0, m.CPM, 1e-9)
	assert.InDelta(t, 13.0/190.0*100, m.ConversionRate, 1e-9)
	assert.InDelta(t, m.Revenue/m.Spend, m.ROAS, 1e-12)
}

func TestAggregate_EmptyAndZeroSpend(t *testing.T) {
	m := Aggregate(nil)
	assert.True(t, m.Empty())
	assert.Equal(t, types.MetricVector{NoData: true}, m)
	assert.Nil(t, m.Values())

	m = Aggregate([]types.Row{row("2025-01-01", 0, 0, 0, 0, 120)})
	assert.False(t, m.Empty())
	assert.Equal(t, 0.0, m.ROAS)
	assert.Equal(t, 0.0, m.CTR)
	assert.Equal(t, 0.0, m.CPC)
	assert.Equal(t, 0.0, m.CPM)
	assert.Equal(t, 0.0, m.ConversionRate)
}

func TestFilterByDateRange(t *testing.T) {
	rows := []types.Row{
		row("2025-01-03", 1, 1, 1, 1, 1),
		row("2025-01-01", 1, 1, 1, 1, 1),
		row("2025-01-05", 1, 1, 1, 1, 1),
		row("2025-01-02", 1, 1, 1, 1, 1),
	}

	got, err := FilterByDateRange(rows, date("2025-01-02"), date("2025-01-03"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, date("2025-01-03"), got[0].Date)
	assert.Equal(t, date("2025-01-02"), got[1].Date)

	again, err := FilterByDateRange(got, date("2025-01-02"), date("2025-01-03"))
	require.NoError(t, err)
	assert.Equal(t, got, again)

	single, err := FilterByDateRange(rows, date("2025-01-05"), date("2025-01-05"))
	require.NoError(t, err)
	assert.Len(t, single, 1)

	none, err := FilterByDateRange(rows, date("2025-02-01"), date("2025-02-28"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFilterByDateRange_InvalidRange(t *testing.T) {
	_, err := FilterByDateRange(nil, date("2025-01-05"), date("2025-01-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidRange)

	var rangeErr *types.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, date("2025-01-05"), rangeErr.Start)
}

func TestFilterWindow(t *testing.T) {
	rows := []types.Row{row("2025-01-01", 1, 1, 1, 1, 1), row("2025-01-10", 1, 1, 1, 1, 1)}

	got, err := FilterWindow(rows, types.DateWindow{StartDate: "2025-01-01", EndDate: "2025-01-05"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = FilterWindow(rows, types.DateWindow{StartDate: "01/01/2025", EndDate: "2025-01-05"})
	assert.ErrorIs(t, err, types.ErrInvalidPlan)
}

func TestDeriveRows(t *testing.T) {
	rows := []types.Row{
		row("2025-01-01", 50, 2000, 40, 4, 150, "platform", "meta"),
		row("2025-01-02", 10, 0, 0, 0, 0),
	}
	out := DeriveRows(rows, "comparison")

	require.Len(t, out, 2)
	assert.Equal(t, "2025-01-01", out[0].Date)
	assert.Equal(t, "comparison", out[0].Window)
	assert.Equal(t, "meta", out[0].Dimensions["platform"])
	assert.Equal(t, Derive(rows[0]), out[0].RowMetrics)
	assert.Equal(t, types.RowMetrics{}, out[1].RowMetrics)
	assert.Empty(t, DeriveRows(nil, "baseline"))
}
