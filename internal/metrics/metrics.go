// Package metrics provides Prometheus metrics for the device link and the
// reactive color engines.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	linkConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lumenode",
		Subsystem: "link",
		Name:      "connected",
		Help:      "Whether the serial link is open (1) or closed (0)",
	})

	commandsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumenode",
		Subsystem: "link",
		Name:      "commands_written_total",
		Help:      "Commands written to the device, by command kind",
	}, []string{"command"})

	commandsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumenode",
		Subsystem: "link",
		Name:      "commands_dropped_total",
		Help:      "Commands dropped because the link was closed or not settled",
	}, []string{"command"})

	framesEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumenode",
		Subsystem: "engine",
		Name:      "frames_emitted_total",
		Help:      "Color frames emitted by each producer",
	}, []string{"source"})

	captureErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumenode",
		Subsystem: "engine",
		Name:      "capture_errors_total",
		Help:      "Capture failures recovered by each engine",
	}, []string{"source"})

	engineRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "lumenode",
		Subsystem: "engine",
		Name:      "running",
		Help:      "Whether an engine is running (1) or stopped (0)",
	}, []string{"engine"})
)

// SetLinkConnected records the serial link state.
func SetLinkConnected(connected bool) {
	if connected {
		linkConnected.Set(1)
	} else {
		linkConnected.Set(0)
	}
}

// CommandWritten increments the written counter for a command kind.
func CommandWritten(command string) {
	commandsWritten.WithLabelValues(command).Inc()
}

// CommandDropped increments the dropped counter for a command kind.
func CommandDropped(command string) {
	commandsDropped.WithLabelValues(command).Inc()
}

// FrameEmitted increments the emitted-frame counter for a producer.
func FrameEmitted(source string) {
	framesEmitted.WithLabelValues(source).Inc()
}

// CaptureError increments the capture-error counter for an engine.
func CaptureError(source string) {
	captureErrors.WithLabelValues(source).Inc()
}

// SetEngineRunning records an engine's run state.
func SetEngineRunning(engine string, running bool) {
	if running {
		engineRunning.WithLabelValues(engine).Set(1)
	} else {
		engineRunning.WithLabelValues(engine).Set(0)
	}
}

// Handler returns the Prometheus metrics HTTP handler.
// This collects all promauto-registered metrics automatically.
func Handler() http.Handler {
	return promhttp.Handler()
}
