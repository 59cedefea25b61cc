package aggregator

import (
	"sort"

	"ads-insights-go/internal/types"
)

const performersPerSide = 3

// AnalyzeSegment groups rows by dimension and ranks the groups by ROAS.
// Blank values are missing data and join no group. ok is false when no row
// carries a non-blank value for the dimension; callers skip it.
func AnalyzeSegment(rows []types.Row, dimension string) (types.SegmentResult, bool) {
	sums := map[string]*types.SegmentGroup{}
	for _, r := range rows {
		v, ok := r.Dimension(dimension)
		if !ok || v == "" {
			continue
		}
		g := sums[v]
		if g == nil {
			g = &types.SegmentGroup{Value: v}
			sums[v] = g
		}
		g.Spend += r.Spend
		g.Revenue += r.Revenue
		g.Clicks += r.Clicks
		g.Purchases += r.Purchases
	}
	if len(sums) == 0 {
		return types.SegmentResult{}, false
	}

	// group-by order is sorted by key; the ROAS sort below must keep it for ties
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	groups := make([]types.SegmentGroup, 0, len(keys))
	for _, k := range keys {
		g := *sums[k]
		g.ROAS = ratio(g.Revenue, g.Spend)
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].ROAS > groups[j].ROAS })

	n := min(performersPerSide, len(groups))
	top := append([]types.SegmentGroup(nil), groups[:n]...)
	bottom := make([]types.SegmentGroup, 0, n)
	for i := len(groups) - 1; i >= len(groups)-n; i-- {
		bottom = append(bottom, groups[i])
	}
	return types.SegmentResult{
		Dimension: dimension,
		Groups:    len(groups),
		Top:       top,
		Bottom:    bottom,
	}, true
}

// AnalyzeSegments runs AnalyzeSegment for each dimension, dropping unknown ones.
func AnalyzeSegments(rows []types.Row, dimensions []string) map[string]types.SegmentResult {
	out := map[string]types.SegmentResult{}
	for _, dim := range dimensions {
		if res, ok := AnalyzeSegment(rows, dim); ok {
			out[dim] = res
		}
	}
	return out
}
