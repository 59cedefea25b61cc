package types

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used by plans and input files.
const DateLayout = "2006-01-02"

var (
	ErrInvalidRange       = errors.New("invalid date range")
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrOverlappingWindows = errors.New("baseline and comparison windows overlap")
)

// Metric names as they appear in change sets, plans and reports.
const (
	MetricSpend          = "spend"
	MetricRevenue        = "revenue"
	MetricImpressions    = "impressions"
	MetricClicks         = "clicks"
	MetricPurchases      = "purchases"
	MetricROAS           = "roas"
	MetricCTR            = "ctr"
	MetricCPC            = "cpc"
	MetricCPM            = "cpm"
	MetricConversionRate = "conversion_rate"
)

// Row is one day of advertising performance for a combination of dimensions.
type Row struct {
	Date        time.Time         `json:"date"`
	Spend       float64           `json:"spend"`
	Impressions float64           `json:"impressions"`
	Clicks      float64           `json:"clicks"`
	Purchases   float64           `json:"purchases"`
	Revenue     float64           `json:"revenue"`
	Dimensions  map[string]string `json:"dimensions,omitempty"`
}

// Dimension returns the categorical value for col and whether the column exists.
func (r Row) Dimension(col string) (string, bool) {
	v, ok := r.Dimensions[col]
	return v, ok
}

// RowMetrics are the per-row derived ratios.
type RowMetrics struct {
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	CPM            float64 `json:"cpm"`
	ConversionRate float64 `json:"conversion_rate"`
}

// DerivedRow is a windowed row with its derived ratios, kept for row-level
// inspection. Aggregates never read it.
type DerivedRow struct {
	Date       string            `json:"date"`
	Window     string            `json:"window"`
	Spend      float64           `json:"spend"`
	Revenue    float64           `json:"revenue"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
	RowMetrics
}

// MetricVector is an aggregate over a row set. Ratios are computed from sums.
// NoData is set by the aggregator when the row set was empty; hand-built
// vectors leave it false and every metric counts as present.
type MetricVector struct {
	NoData         bool    `json:"no_data,omitempty"`
	Rows           int     `json:"rows"`
	Spend          float64 `json:"spend"`
	Revenue        float64 `json:"revenue"`
	Impressions    float64 `json:"impressions"`
	Clicks         float64 `json:"clicks"`
	Purchases      float64 `json:"purchases"`
	ROAS           float64 `json:"roas"`
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	CPM            float64 `json:"cpm"`
	ConversionRate float64 `json:"conversion_rate"`
}

// NamedValue pairs a metric name with its value.
type NamedValue struct {
	Name  string
	Value float64
}

// Empty reports whether the vector was aggregated from zero rows.
func (m MetricVector) Empty() bool { return m.NoData }

// Values lists the metrics present in the vector in a fixed order.
// An empty vector has no metrics present.
func (m MetricVector) Values() []NamedValue {
	if m.Empty() {
		return nil
	}
	return []NamedValue{
		{MetricSpend, m.Spend},
		{MetricRevenue, m.Revenue},
		{MetricImpressions, m.Impressions},
		{MetricClicks, m.Clicks},
		{MetricPurchases, m.Purchases},
		{MetricROAS, m.ROAS},
		{MetricCTR, m.CTR},
		{MetricCPC, m.CPC},
		{MetricCPM, m.CPM},
		{MetricConversionRate, m.ConversionRate},
	}
}

// Direction of a metric movement.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// ChangeRecord compares one metric across the baseline and comparison windows.
type ChangeRecord struct {
	Baseline       float64   `json:"baseline"`
	Comparison     float64   `json:"comparison"`
	AbsoluteChange float64   `json:"absolute_change"`
	PercentChange  float64   `json:"percent_change"`
	Direction      Direction `json:"direction"`
}

// ChangeSet maps metric name to its change record.
type ChangeSet map[string]ChangeRecord

// Percent returns the percent change for metric and whether it is present.
func (c ChangeSet) Percent(metric string) (float64, bool) {
	rec, ok := c[metric]
	if !ok {
		return 0, false
	}
	return rec.PercentChange, true
}

// SegmentGroup is one value of a categorical dimension with its summed totals.
type SegmentGroup struct {
	Value     string  `json:"value"`
	Spend     float64 `json:"spend"`
	Revenue   float64 `json:"revenue"`
	Clicks    float64 `json:"clicks"`
	Purchases float64 `json:"purchases"`
	ROAS      float64 `json:"roas"`
}

// SegmentResult ranks the groups of one dimension by ROAS.
// Top is best first; Bottom is worst first.
type SegmentResult struct {
	Dimension string         `json:"dimension"`
	Groups    int            `json:"groups"`
	Top       []SegmentGroup `json:"top_performers"`
	Bottom    []SegmentGroup `json:"bottom_performers"`
}

// --------------------------------------------
// Plan consumed by the data stage
// --------------------------------------------

type DateWindow struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Label     string `json:"label,omitempty"`
}

// Bounds parses the window dates.
func (w DateWindow) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, w.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date %q: %v", ErrInvalidPlan, w.StartDate, err)
	}
	end, err := time.Parse(DateLayout, w.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %q: %v", ErrInvalidPlan, w.EndDate, err)
	}
	return start, end, nil
}

type TimeWindows struct {
	Baseline       DateWindow `json:"baseline"`
	Comparison     DateWindow `json:"comparison"`
	ComparisonDays int        `json:"comparison_days"`
}

type Plan struct {
	PlanID            string      `json:"plan_id"`
	CreatedAt         time.Time   `json:"timestamp"`
	UserQuery         string      `json:"user_query"`
	Objectives        []string    `json:"objectives"`
	MetricsToAnalyze  []string    `json:"metrics_to_analyze"`
	TimeWindows       TimeWindows `json:"time_windows"`
	Segments          []string    `json:"segments"`
	PriorityQuestions []string    `json:"priority_questions"`
	AnalysisType      string      `json:"analysis_type"`
}

// Validate checks that both windows parse, are ordered and do not overlap.
func (p Plan) Validate() error {
	bs, be, err := p.TimeWindows.Baseline.Bounds()
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	if bs.After(be) {
		return fmt.Errorf("baseline: %w", &InvalidRangeError{Start: bs, End: be})
	}
	cs, ce, err := p.TimeWindows.Comparison.Bounds()
	if err != nil {
		return fmt.Errorf("comparison: %w", err)
	}
	if cs.After(ce) {
		return fmt.Errorf("comparison: %w", &InvalidRangeError{Start: cs, End: ce})
	}
	if !bs.After(ce) && !cs.After(be) {
		return fmt.Errorf("%w: baseline %s..%s, comparison %s..%s", ErrOverlappingWindows,
			p.TimeWindows.Baseline.StartDate, p.TimeWindows.Baseline.EndDate,
			p.TimeWindows.Comparison.StartDate, p.TimeWindows.Comparison.EndDate)
	}
	return nil
}

// InvalidRangeError is returned when a date range starts after it ends.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(DateLayout), e.End.Format(DateLayout))
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }
