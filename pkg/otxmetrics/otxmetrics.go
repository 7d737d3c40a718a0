// Package otxmetrics exposes the prometheus collectors otx-bench serves
// on /metrics: a count of every result code Verify has returned, and a
// histogram of verify latency. Grounded on the teacher's package-level
// var + MustRegister-in-init style for its own node metrics.
package otxmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var verifyResults = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Help:      "Count of lockscript.Verify results by result code",
		Name:      "verify_result_total",
		Namespace: "otx",
	},
	[]string{"code"},
)

var verifyLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Help:      "Duration of a single lockscript.Verify call",
		Name:      "verify_latency_seconds",
		Namespace: "otx",
		Buckets:   prometheus.DefBuckets,
	},
)

func init() {
	prometheus.MustRegister(verifyResults, verifyLatency)
}

// ObserveResult records one Verify outcome, named by its String() form
// (e.g. "OK", "ERROR_PUBKEY_BLAKE160_HASH").
func ObserveResult(code string) {
	verifyResults.WithLabelValues(code).Inc()
}

// ObserveLatency records how long one Verify call took.
func ObserveLatency(d time.Duration) {
	verifyLatency.Observe(d.Seconds())
}
