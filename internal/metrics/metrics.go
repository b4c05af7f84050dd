// Package metrics holds the Prometheus collectors updated during a batch.
// A batch run can dump them in text exposition format for node_exporter's
// textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch metrics
var (
	FilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trimmer_files_processed_total",
			Help: "Files processed, by final status",
		},
		[]string{"status"},
	)

	RemuxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trimmer_remux_duration_seconds",
			Help:    "Wall time spent in ffmpeg per file",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600, 7200},
		},
	)

	FramesEncoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trimmer_frames_encoded_total",
			Help: "Frames reported by ffmpeg across all files",
		},
	)

	BackupsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trimmer_backups_created_total",
			Help: "Original files moved aside as backups",
		},
	)

	CommitFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trimmer_commit_failures_total",
			Help: "Outputs that could not be renamed into place",
		},
	)

	BatchRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trimmer_batch_running",
			Help: "Whether a batch is currently running (1 = yes, 0 = no)",
		},
	)
)

// Probe metrics
var (
	ProbeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trimmer_probe_errors_total",
			Help: "ffprobe invocations that failed",
		},
	)
)

// WriteTextfile dumps the default registry to path. Empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
