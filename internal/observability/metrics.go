package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TCPConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleettrack_tcp_connections_total",
		Help: "TCP connections accepted from devices",
	})
	FramesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleettrack_frames_received_total",
		Help: "Raw frames received per transport",
	}, []string{"transport"})
	FramesUnknown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleettrack_frames_unknown_total",
		Help: "Frames with no recognizable protocol",
	})
	FixesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleettrack_fixes_decoded_total",
		Help: "Normalized fixes produced per protocol",
	}, []string{"protocol"})
	FixesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleettrack_fixes_persisted_total",
		Help: "Fixes appended to the location sink",
	})
	UnknownDevices = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleettrack_unknown_devices_total",
		Help: "Fixes dropped because the device has no directory entry",
	})
	AcksSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleettrack_acks_sent_total",
		Help: "GT06 acknowledgment frames written back",
	})
	DownstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleettrack_downstream_errors_total",
		Help: "Failures talking to directory, sink, cache or bus",
	}, []string{"target"})
	DecodeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleettrack_decode_latency_seconds",
		Help:    "Detection plus decode time per frame",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveDecodeLatency(start time.Time) {
	DecodeLatency.Observe(time.Since(start).Seconds())
}

// StartMetricsServer serves /metrics and a bare liveness endpoint on its own
// port, away from the device-facing listener.
func StartMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	_ = http.ListenAndServe(":"+port, mux)
}
