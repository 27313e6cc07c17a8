package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/stats"
)

// Registry holds the coordinator's Prometheus collectors; the control
// surface serves it on /metrics.
var Registry = prometheus.NewRegistry()

var (
	fetchedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "racefeed_records_fetched",
		Help: "Records read from the vendor session this run.",
	}, []string{"feed"})
	parsedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "racefeed_records_parsed",
		Help: "Rows produced by the parsers this run.",
	}, []string{"feed"})
	importedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "racefeed_records_imported",
		Help: "Rows upserted into the database this run.",
	}, []string{"feed"})
	failedGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "racefeed_records_failed",
		Help: "Records rejected by parsing or writing this run.",
	}, []string{"feed"})
	batchesGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "racefeed_batches_flushed",
		Help: "Batches committed this run.",
	}, []string{"feed"})
	retriesGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "racefeed_session_retries",
		Help: "Vendor session retries this run.",
	}, []string{"feed"})
)

func init() {
	Registry.MustRegister(fetchedGauge, parsedGauge, importedGauge,
		failedGauge, batchesGauge, retriesGauge)
}

// observeSnapshot mirrors the run counters into the Prometheus gauges.
func observeSnapshot(f feed.Feed, s stats.Snapshot) {
	l := prometheus.Labels{"feed": f.String()}
	fetchedGauge.With(l).Set(float64(s.Fetched))
	parsedGauge.With(l).Set(float64(s.Parsed))
	importedGauge.With(l).Set(float64(s.Imported))
	failedGauge.With(l).Set(float64(s.Failed))
	batchesGauge.With(l).Set(float64(s.Batches))
	retriesGauge.With(l).Set(float64(s.Retries))
}
