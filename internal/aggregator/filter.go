package aggregator

import (
	"time"

	"ads-insights-go/internal/types"
)

// FilterByDateRange keeps rows dated within [start, end], both inclusive.
// Only the calendar date of each bound is considered.
func FilterByDateRange(rows []types.Row, start, end time.Time) ([]types.Row, error) {
	start, end = day(start), day(end)
	if start.After(end) {
		return nil, &types.InvalidRangeError{Start: start, End: end}
	}
	out := make([]types.Row, 0, len(rows))
	for _, r := range rows {
		d := day(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// FilterWindow applies a plan window given as YYYY-MM-DD strings.
func FilterWindow(rows []types.Row, w types.DateWindow) ([]types.Row, error) {
	start, end, err := w.Bounds()
	if err != nil {
		return nil, err
	}
	return FilterByDateRange(rows, start, end)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
