package octree

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdimyadi/bimrl/internal/geometry"
	"github.com/jdimyadi/bimrl/internal/testutil"
)

// counterValue sums the samples of a registered counter family whose labels
// include want.
func counterValue(t *testing.T, name string, want map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func TestMetrics_CellsAndErrors(t *testing.T) {
	testutil.MuteLogs(t)
	borderCells := map[string]string{kindLabel: "polyhedron", borderLabel: "true"}
	outside := map[string]string{kindLabel: "polyhedron", errTypeLabel: "outside_world"}

	beforeCells := counterValue(t, "bimrl_octree_cells_emitted_total", borderCells)
	beforeNodes := counterValue(t, "bimrl_octree_nodes_expanded_total", map[string]string{kindLabel: "polyhedron"})
	beforeErrs := counterValue(t, "bimrl_octree_index_errors_total", outside)

	o, err := New(testContext(3))
	require.NoError(t, err)
	_, err = o.ComputeOctree(context.Background(), "column", testutil.Box(t, 10, 10, 10, 20, 20, 20))
	require.NoError(t, err)
	_, err = o.ComputeOctree(context.Background(), "far", testutil.Box(t, 200, 200, 200, 210, 210, 210))
	require.ErrorIs(t, err, ErrOutsideWorld)

	// Other tests may index concurrently, so only lower bounds hold.
	assert.GreaterOrEqual(t, counterValue(t, "bimrl_octree_cells_emitted_total", borderCells)-beforeCells, 8.0)
	assert.GreaterOrEqual(t, counterValue(t, "bimrl_octree_nodes_expanded_total", map[string]string{kindLabel: "polyhedron"})-beforeNodes, 1.0)
	assert.GreaterOrEqual(t, counterValue(t, "bimrl_octree_index_errors_total", outside)-beforeErrs, 1.0)
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&OutsideWorldError{ElementID: "e"}, "outside_world"},
		{fmt.Errorf("element e: %w", ErrUnsupportedGeometry), "unsupported_geometry"},
		{fmt.Errorf("element e: %w", geometry.ErrDegenerate), "degenerate_geometry"},
		{fmt.Errorf("element e: %w", context.Canceled), "canceled"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, errorType(tt.err))
		})
	}
}
