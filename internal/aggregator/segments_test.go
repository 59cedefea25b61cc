package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ads-insights-go/internal/types"
)

func segmentRows() []types.Row {
	return []types.Row{
		row("2025-01-01", 100, 1, 1, 1, 400, "campaign_name", "Alpha"),
		row("2025-01-02", 100, 1, 1, 1, 400, "campaign_name", "Alpha"),
		row("2025-01-01", 100, 1, 1, 1, 100, "campaign_name", "Bravo"),
		row("2025-01-01", 100, 1, 1, 1, 250, "campaign_name", "Charlie"),
		row("2025-01-01", 100, 1, 1, 1, 250, "campaign_name", "Delta"),
		row("2025-01-01", 0, 1, 1, 1, 50, "campaign_name", "Echo"),
	}
}

func TestAnalyzeSegment_RanksByAggregateROAS(t *testing.T) {
	res, ok := AnalyzeSegment(segmentRows(), "campaign_name")
	require.True(t, ok)

	assert.Equal(t, "campaign_name", res.Dimension)
	assert.Equal(t, 5, res.Groups)
	require.Len(t, res.Top, 3)
	assert.Equal(t, "Alpha", res.Top[0].Value)
	assert.Equal(t, 200.0, res.Top[0].Spend)
	assert.InDelta(t, 4.0, res.Top[0].ROAS, 1e-9)

	// Charlie and Delta tie at 2.5; group-by order puts Charlie first
	assert.Equal(t, "Charlie", res.Top[1].Value)
	assert.Equal(t, "Delta", res.Top[2].Value)

	require.Len(t, res.Bottom, 3)
	assert.Equal(t, "Echo", res.Bottom[0].Value)
	assert.Equal(t, 0.0, res.Bottom[0].ROAS)
	assert.Equal(t, "Bravo", res.Bottom[1].Value)
	assert.Equal(t, "Delta", res.Bottom[2].Value)
}

func TestAnalyzeSegment_FewGroups(t *testing.T) {
	rows := segmentRows()[:3]
	res, ok := AnalyzeSegment(rows, "campaign_name")
	require.True(t, ok)
	assert.Len(t, res.Top, 2)
	assert.Len(t, res.Bottom, 2)
	assert.Equal(t, "Bravo", res.Bottom[0].Value)
}

func TestAnalyzeSegments_SkipsUnknownDimensions(t *testing.T) {
	got := AnalyzeSegments(segmentRows(), []string{"campaign_name", "country"})
	assert.Len(t, got, 1)
	assert.Contains(t, got, "campaign_name")

	_, ok := AnalyzeSegment(nil, "campaign_name")
	assert.False(t, ok)
}

func TestAnalyzeSegment_Deterministic(t *testing.T) {
	first, _ := AnalyzeSegment(segmentRows(), "campaign_name")
	for i := 0; i < 20; i++ {
		again, _ := AnalyzeSegment(segmentRows(), "campaign_name")
		assert.Equal(t, first, again)
	}
}

func TestAnalyzeSegment_SkipsBlankValues(t *testing.T) {
	rows := append(segmentRows(),
		row("2025-01-01", 500, 1000, 10, 1, 0, "campaign_name", ""),
		row("2025-01-02", 500, 1000, 10, 1, 0, "campaign_name", ""),
	)
	res, ok := AnalyzeSegment(rows, "campaign_name")
	require.True(t, ok)
	want, _ := AnalyzeSegment(segmentRows(), "campaign_name")
	assert.Equal(t, want, res)
	for _, g := range append(res.Top, res.Bottom...) {
		assert.NotEmpty(t, g.Value)
	}

	blank := []types.Row{row("2025-01-01", 100, 1000, 10, 1, 50, "country", "")}
	_, ok = AnalyzeSegment(blank, "country")
	assert.False(t, ok)
	assert.Empty(t, AnalyzeSegments(blank, []string{"country"}))
}
