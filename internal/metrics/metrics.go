// Package metrics records run statistics in a Prometheus textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "panostitch"

// Recorder holds the gauges for a single run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	RunSuccess      *prometheus.GaugeVec
	FramesWritten   *prometheus.GaugeVec
	FrameBytes      prometheus.Gauge
	StageDuration   *prometheus.GaugeVec
	OutputPixels    *prometheus.GaugeVec
	ProbeFallbacks  prometheus.Counter
	UploadedObjects prometheus.Counter
	LastRun         prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		RunSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "1 if the last stitch run succeeded, 0 otherwise",
		}, []string{"algorithm"}),
		FramesWritten: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frames_written",
			Help:      "Number of frames found in the output directory after the last run",
		}, []string{"image_type"}),
		FrameBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frame_bytes",
			Help:      "Total size of the frames written by the last run",
		}),
		StageDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each stage of the last run",
		}, []string{"stage"}),
		OutputPixels: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "output_size_pixels",
			Help:      "Equirectangular output size of the last run",
		}, []string{"dimension"}),
		ProbeFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_fallbacks_total",
			Help:      "Runs that fell back to the default resolution",
		}),
		UploadedObjects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_objects_total",
			Help:      "Frames uploaded to object storage",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// SetOutputSize records the resolution handed to the stitcher.
func (r *Recorder) SetOutputSize(width, height int) {
	if r == nil {
		return
	}
	r.OutputPixels.WithLabelValues("width").Set(float64(width))
	r.OutputPixels.WithLabelValues("height").Set(float64(height))
}

// SetFrames records what the stitcher left in the output directory.
func (r *Recorder) SetFrames(imageType string, count int, bytes int64) {
	if r == nil {
		return
	}
	r.FramesWritten.WithLabelValues(imageType).Set(float64(count))
	r.FrameBytes.Set(float64(bytes))
}

// RecordProbeFallback counts a run that used the default resolution.
func (r *Recorder) RecordProbeFallback() {
	if r == nil {
		return
	}
	r.ProbeFallbacks.Inc()
}

// AddUploaded counts uploaded frames.
func (r *Recorder) AddUploaded(n int) {
	if r == nil {
		return
	}
	r.UploadedObjects.Add(float64(n))
}

// Finish records the run outcome and its completion time.
func (r *Recorder) Finish(algorithm string, success bool) {
	if r == nil {
		return
	}
	value := 0.0
	if success {
		value = 1
	}
	r.RunSuccess.WithLabelValues(algorithm).Set(value)
	r.LastRun.SetToCurrentTime()
}

// WriteTextfile writes all metrics to path in the text exposition format,
// atomically, for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// Registry exposes the underlying registry, or nil for a nil recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
