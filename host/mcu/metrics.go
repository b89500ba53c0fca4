package mcu

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mcuQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "muxer_mcu_query_duration_seconds",
			Help:    "Distribution of command round trip times, by command",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms -> 2s
		},
		[]string{"command"},
	)
	mcuQueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muxer_mcu_query_errors_total",
			Help: "Commands that got no valid response, by command",
		},
		[]string{"command"},
	)
	mcuPinmuxResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muxer_mcu_pinmux_results_total",
			Help: "Pinmux results reported by the firmware, by command and outcome",
		},
		[]string{"command", "ok"},
	)
	mcuFirmwareShutdown = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "muxer_mcu_firmware_shutdown",
			Help: "1 if the firmware last reported shutdown",
		},
	)
)
