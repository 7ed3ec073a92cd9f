package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	uploads       *prom.CounterVec
	cacheHits     *prom.CounterVec
	skipped       *prom.CounterVec
	uploadedBytes prom.Counter
	phaseDuration *prom.HistogramVec
	cycleDuration prom.Histogram
	cycleOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		uploads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetpipe",
			Name:      "uploads_total",
			Help:      "Assets uploaded to the remote store, by kind",
		}, []string{"kind"}),
		cacheHits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetpipe",
			Name:      "cache_hits_total",
			Help:      "Uploads skipped because the content fingerprint was cached",
		}, []string{"kind"}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetpipe",
			Name:      "uploads_skipped_total",
			Help:      "Assets the upload collaborator chose to leave local",
		}, []string{"kind"}),
		uploadedBytes: prom.NewCounter(prom.CounterOpts{
			Namespace: "assetpipe",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes uploaded to the remote store",
		}),
		phaseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "assetpipe",
			Name:      "phase_duration_seconds",
			Help:      "Duration of individual publish phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"}),
		cycleDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "assetpipe",
			Name:      "cycle_duration_seconds",
			Help:      "Total publish cycle duration",
			Buckets:   prom.DefBuckets,
		}),
		cycleOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetpipe",
			Name:      "cycle_outcomes_total",
			Help:      "Publish cycle outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.uploads, pr.cacheHits, pr.skipped, pr.uploadedBytes,
		pr.phaseDuration, pr.cycleDuration, pr.cycleOutcome)
	return pr
}

func (p *PrometheusRecorder) IncUpload(kind string) {
	p.uploads.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncCacheHit(kind string) {
	p.cacheHits.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncSkipped(kind string) {
	p.skipped.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) AddUploadedBytes(n int) {
	p.uploadedBytes.Add(float64(n))
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveCycleDuration(d time.Duration) {
	p.cycleDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCycleOutcome(outcome string) {
	p.cycleOutcome.WithLabelValues(outcome).Inc()
}
