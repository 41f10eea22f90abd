package octree

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel    = "kind"
	borderLabel  = "border"
	errTypeLabel = "error_type"
)

var (
	nodesExpanded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bimrl_octree_nodes_expanded_total",
		Help: "The number of octree cells subdivided during indexing.",
	}, []string{
		kindLabel,
	})

	cellsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bimrl_octree_cells_emitted_total",
		Help: "The number of leaf cells produced for indexed elements.",
	}, []string{
		kindLabel,
		borderLabel,
	})

	indexLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bimrl_octree_index_seconds",
		Help:    "The time to index one element.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{
		kindLabel,
	})

	indexErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bimrl_octree_index_errors_total",
		Help: "The errors that occurred while indexing an element.",
	}, []string{
		kindLabel,
		errTypeLabel,
	})
)

func instrumentNodesExpanded(kind string, n int64) {
	nodesExpanded.With(prometheus.Labels{
		kindLabel: kind,
	}).Add(float64(n))
}

func instrumentCellsEmitted(kind string, border bool, n int) {
	cellsEmitted.With(prometheus.Labels{
		kindLabel:   kind,
		borderLabel: strconv.FormatBool(border),
	}).Add(float64(n))
}

func instrumentIndexLatency(kind string, start time.Time) {
	indexLatency.With(prometheus.Labels{
		kindLabel: kind,
	}).Observe(time.Since(start).Seconds())
}

func instrumentIndexError(kind string, err error) {
	indexErrors.
		With(prometheus.Labels{
			kindLabel:    kind,
			errTypeLabel: errorType(err),
		}).
		Inc()
}
