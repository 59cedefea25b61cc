package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ads-insights-go/internal/types"
)

func TestComputeChanges_IdenticalVectorsAreFlat(t *testing.T) {
	v := Aggregate([]types.Row{
		row("2025-01-01", 100, 10000, 200, 10, 350),
		row("2025-01-02", 80, 9000, 150, 6, 200),
	})
	changes := ComputeChanges(v, v)

	require.Len(t, changes, 10)
	for name, c := range changes {
		assert.Equal(t, 0.0, c.PercentChange, name)
		assert.Equal(t, 0.0, c.AbsoluteChange, name)
		assert.Equal(t, types.DirectionFlat, c.Direction, name)
	}
}

func TestComputeChanges_ZeroBaseline(t *testing.T) {
	base := Aggregate([]types.Row{row("2025-01-01", 0, 0, 0, 0, 0)})
	cmp := Aggregate([]types.Row{row("2025-01-08", 100, 5000, 50, 5, 300)})

	changes := ComputeChanges(base, cmp)
	for name, c := range changes {
		assert.Equal(t, 0.0, c.PercentChange, name)
		assert.Equal(t, types.DirectionFlat, c.Direction, name)
	}
	assert.Equal(t, 100.0, changes[types.MetricSpend].AbsoluteChange)
}

func TestComputeChanges_EmptyWindowEmitsNothing(t *testing.T) {
	v := Aggregate([]types.Row{row("2025-01-01", 100, 10000, 200, 10, 350)})

	assert.Empty(t, ComputeChanges(v, Aggregate(nil)))
	assert.Empty(t, ComputeChanges(Aggregate(nil), v))
}

func TestComputeChanges_HandBuiltVectors(t *testing.T) {
	base := types.MetricVector{ROAS: 3.5, Spend: 100, Revenue: 350}
	cmp := types.MetricVector{ROAS: 2.8, Spend: 100, Revenue: 280}

	changes := ComputeChanges(base, cmp)
	require.Len(t, changes, 10)
	roas := changes[types.MetricROAS]
	assert.InDelta(t, -20.0, roas.PercentChange, 1e-9)
	assert.InDelta(t, -0.7, roas.AbsoluteChange, 1e-9)
	assert.Equal(t, types.DirectionDown, roas.Direction)
	assert.Equal(t, types.DirectionFlat, changes[types.MetricSpend].Direction)

	var zero types.MetricVector
	flat := ComputeChanges(zero, zero)
	require.Len(t, flat, 10)
	for name, c := range flat {
		assert.Equal(t, types.DirectionFlat, c.Direction, name)
	}
}

func TestChange_ROASScenario(t *testing.T) {
	c := Change(3.5, 2.8)
	assert.InDelta(t, -20.0, c.PercentChange, 1e-9)
	assert.InDelta(t, -0.7, c.AbsoluteChange, 1e-9)
	assert.Equal(t, types.DirectionDown, c.Direction)

	c = Change(2.5, 1.8)
	assert.InDelta(t, -28.0, c.PercentChange, 1e-9)

	c = Change(1.2, 1.6)
	assert.Equal(t, types.DirectionUp, c.Direction)
	assert.InDelta(t, 33.333, c.PercentChange, 1e-3)
}

func TestChangeSet_Percent(t *testing.T) {
	cs := types.ChangeSet{types.MetricCTR: Change(2, 1)}
	pct, ok := cs.Percent(types.MetricCTR)
	assert.True(t, ok)
	assert.Equal(t, -50.0, pct)

	_, ok = cs.Percent(types.MetricCPM)
	assert.False(t, ok)
}
