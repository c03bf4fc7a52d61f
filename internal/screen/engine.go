package screen

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/lumenode/internal/events"
	"github.com/smazurov/lumenode/internal/logging"
	"github.com/smazurov/lumenode/internal/metrics"
	"github.com/smazurov/lumenode/internal/protocol"
	"gopkg.in/tomb.v2"
)

// DefaultFPS is the sampling rate when none is configured.
const DefaultFPS = 10

// Sink receives the engine's output. Stop also needs to switch the device
// off, hence SetMode alongside the color path.
type Sink interface {
	SendColor(r, g, b uint8)
	SetMode(mode string)
}

// Options configures an Engine.
type Options struct {
	Grabber  Grabber
	Sink     Sink
	EventBus *events.Bus
	FPS      int
}

// Engine samples the screen on a dedicated loop and emits the dominant
// color. The loop never dies from a capture failure; failed ticks emit
// black instead.
type Engine struct {
	grabber Grabber
	sink    Sink
	bus     *events.Bus
	logger  *slog.Logger

	fps atomic.Int64

	mu      sync.Mutex
	region  *image.Rectangle
	running bool
	t       *tomb.Tomb
}

// NewEngine creates a stopped engine.
func NewEngine(opts *Options) *Engine {
	e := &Engine{
		grabber: opts.Grabber,
		sink:    opts.Sink,
		bus:     opts.EventBus,
		logger:  logging.GetLogger("screen"),
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	e.fps.Store(int64(fps))
	return e
}

// Start spawns the sampling loop. Starting a running engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	t := &tomb.Tomb{}
	t.Go(func() error {
		e.run(t)
		return nil
	})
	e.t = t
	e.running = true

	e.logger.Info("Screen engine started", "fps", e.fps.Load())
	metrics.SetEngineRunning("screen", true)
	e.publishState(true)
}

// Stop switches the device off and halts the loop. The loop observes the
// kill within one frame interval. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	t := e.t
	e.t = nil
	e.running = false
	e.mu.Unlock()

	e.sink.SetMode("OFF")
	t.Kill(nil)
	_ = t.Wait()

	e.logger.Info("Screen engine stopped")
	metrics.SetEngineRunning("screen", false)
	e.publishState(false)
}

// IsRunning reports whether the sampling loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// UpdateFPS changes the sampling rate; it takes effect on the next loop
// iteration, not the sleep in progress.
func (e *Engine) UpdateFPS(fps int) {
	if fps <= 0 {
		return
	}
	e.fps.Store(int64(fps))
}

// FPS returns the current sampling rate.
func (e *Engine) FPS() int {
	return int(e.fps.Load())
}

// SelectSnapshot restricts sampling to the given rectangle starting with
// the next capture.
func (e *Engine) SelectSnapshot(x, y, width, height int) {
	r := image.Rect(x, y, x+width, y+height)
	e.mu.Lock()
	e.region = &r
	e.mu.Unlock()
	e.logger.Debug("Snapshot region set", "x", x, "y", y, "width", width, "height", height)
}

// ClearSnapshot returns sampling to the full screen starting with the next
// capture.
func (e *Engine) ClearSnapshot() {
	e.mu.Lock()
	e.region = nil
	e.mu.Unlock()
	e.logger.Debug("Snapshot region cleared")
}

// Snapshot returns the configured region, or nil for full screen.
func (e *Engine) Snapshot() *image.Rectangle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.region == nil {
		return nil
	}
	r := *e.region
	return &r
}

func (e *Engine) run(t *tomb.Tomb) {
	for {
		select {
		case <-t.Dying():
			return
		default:
		}

		c := e.sample()
		e.sink.SendColor(c.R, c.G, c.B)
		metrics.FrameEmitted("screen")
		e.publishColor(c)

		interval := time.Second / time.Duration(e.fps.Load())
		select {
		case <-t.Dying():
			return
		case <-time.After(interval):
		}
	}
}

// sample runs one capture-to-color pass. Every failure mode collapses to
// black so the loop keeps its cadence.
func (e *Engine) sample() protocol.Color {
	region, err := e.captureBounds()
	if err != nil {
		return e.sampleFailed(fmt.Errorf("resolving capture bounds: %w", err))
	}
	img, err := e.grabber.Capture(region)
	if err != nil {
		return e.sampleFailed(fmt.Errorf("capturing screen: %w", err))
	}

	boosted := saturate(img, saturationBoost)
	small := downsample(boosted, sampleSize)
	c, err := dominantColor(small)
	if err != nil {
		return e.sampleFailed(err)
	}
	return c
}

func (e *Engine) captureBounds() (image.Rectangle, error) {
	e.mu.Lock()
	region := e.region
	e.mu.Unlock()
	if region != nil {
		return *region, nil
	}
	return e.grabber.FullBounds()
}

func (e *Engine) sampleFailed(err error) protocol.Color {
	e.logger.Warn("Screen sample failed, emitting black", "error", err)
	metrics.CaptureError("screen")
	if e.bus != nil {
		e.bus.Publish(events.CaptureErrorEvent{
			Source:    "screen",
			Error:     err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return protocol.Color{}
}

func (e *Engine) publishState(running bool) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.EngineStateChangedEvent{
		Engine:    "screen",
		Running:   running,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (e *Engine) publishColor(c protocol.Color) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.ColorEmittedEvent{
		Source:    "screen",
		R:         c.R,
		G:         c.G,
		B:         c.B,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
