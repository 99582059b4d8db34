package dataset

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics of a Converter. A nil registerer leaves them unregistered.
type metrics struct {
	filesWritten     *prometheus.CounterVec
	bytesWritten     prometheus.Counter
	layersPacked     *prometheus.CounterVec
	operationSeconds *prometheus.HistogramVec
}

func newMetrics(r prometheus.Registerer) *metrics {
	return &metrics{
		filesWritten: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "sparsednn_files_converted_total",
			Help: "Total number of binary files written, by content kind.",
		}, []string{"kind"}),
		bytesWritten: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "sparsednn_bytes_written_total",
			Help: "Total number of bytes written to binary files.",
		}),
		layersPacked: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "sparsednn_layers_packed_total",
			Help: "Total number of layers placed into an arena, by source format.",
		}, []string{"source"}),
		operationSeconds: promauto.With(r).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sparsednn_operation_duration_seconds",
			Help:    "Time taken by conversion and loading operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
