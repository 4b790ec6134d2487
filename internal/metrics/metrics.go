// Package metrics provides Prometheus metrics for host enumeration and
// dispatcher lookups.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	captureDevices = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "capturehost",
		Name:      "devices",
		Help:      "Number of capture devices in the host cache",
	}, []string{"kind"})

	enumerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "capturehost",
		Name:      "enumerations_total",
		Help:      "Host device enumerations by result",
	}, []string{"result"})

	dispatcherLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "capturehost",
		Subsystem: "dispatcher",
		Name:      "lookups_total",
		Help:      "Dispatcher device lookups by operation and result",
	}, []string{"op", "result"})
)

// SetDeviceCount records the number of cached devices of kind.
func SetDeviceCount(kind string, count int) {
	captureDevices.WithLabelValues(kind).Set(float64(count))
}

// RecordEnumeration counts one host enumeration.
func RecordEnumeration(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	enumerations.WithLabelValues(result).Inc()
}

// RecordLookup counts one dispatcher lookup.
func RecordLookup(op string, found bool) {
	result := "found"
	if !found {
		result = "not_found"
	}
	dispatcherLookups.WithLabelValues(op, result).Inc()
}
