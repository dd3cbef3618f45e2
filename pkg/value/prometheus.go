package value

import "github.com/prometheus/client_golang/prometheus"

const (
	opEncode = "encode"
	opDecode = "decode"
)

var (
	// framesTotal prometheus metric.
	framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Frames successfully encoded or decoded",
			Name:      "frames_total",
			Namespace: "typpo",
		},
		[]string{"op"},
	)
	// codecBytes prometheus metric.
	codecBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Bytes produced by encoding or consumed by decoding",
			Name:      "codec_bytes_total",
			Namespace: "typpo",
		},
		[]string{"op"},
	)
	// codecErrors prometheus metric.
	codecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Failed encode or decode calls",
			Name:      "codec_errors_total",
			Namespace: "typpo",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(
		framesTotal,
		codecBytes,
		codecErrors,
	)
}

func updateCodecMetrics(op string, n int, err error) {
	if err != nil {
		codecErrors.WithLabelValues(op).Inc()
		return
	}
	framesTotal.WithLabelValues(op).Inc()
	codecBytes.WithLabelValues(op).Add(float64(n))
}
