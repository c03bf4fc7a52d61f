package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/smazurov/lumenode/internal/events"
	"github.com/smazurov/lumenode/internal/logging"
	"github.com/smazurov/lumenode/internal/metrics"
	"gopkg.in/tomb.v2"
)

// DefaultTickInterval is the analysis cadence. It is deliberately decoupled
// from the chunk duration; the source hands back whatever its newest chunk is.
const DefaultTickInterval = 50 * time.Millisecond

// Sink receives the color frames the engine produces.
type Sink interface {
	SendColor(r, g, b uint8)
}

// Options configures an Engine. Zero fields take the package defaults.
type Options struct {
	Source       Source
	Sink         Sink
	EventBus     *events.Bus
	ChunkSize    int
	SampleRate   int
	TickInterval time.Duration
}

// Engine runs the audio-reactive pipeline on a periodic tick. Band envelopes
// survive Stop/Start so the self-calibrated gain carries across restarts
// within a session.
type Engine struct {
	source    Source
	sink      Sink
	bus       *events.Bus
	logger    *slog.Logger
	analyzer  *analyzer
	chunkSize int
	tick      time.Duration
	decayStep float64

	// Written only by the engine's own loop.
	bands [3]bandState

	mu      sync.Mutex
	running bool
	t       *tomb.Tomb
}

// NewEngine creates a stopped engine.
func NewEngine(opts *Options) *Engine {
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	tick := opts.TickInterval
	if tick == 0 {
		tick = DefaultTickInterval
	}
	e := &Engine{
		source:    opts.Source,
		sink:      opts.Sink,
		bus:       opts.EventBus,
		logger:    logging.GetLogger("audio"),
		analyzer:  newAnalyzer(chunkSize, sampleRate),
		chunkSize: chunkSize,
		tick:      tick,
		decayStep: 1 / (float64(sampleRate) * decaySeconds),
	}
	for i := range e.bands {
		e.bands[i].max = 1
	}
	return e
}

// Start opens the capture source and launches the tick loop. Starting a
// running engine is a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	if err := e.source.Start(); err != nil {
		return fmt.Errorf("starting audio source: %w", err)
	}
	t := &tomb.Tomb{}
	t.Go(func() error {
		e.run(t)
		return nil
	})
	e.t = t
	e.running = true

	e.logger.Info("Audio engine started", "tick", e.tick)
	metrics.SetEngineRunning("audio", true)
	e.publishState(true)
	return nil
}

// Stop halts the tick loop and the capture source. Safe to call repeatedly.
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

	t.Kill(nil)
	_ = t.Wait()
	e.source.Stop()

	e.logger.Info("Audio engine stopped")
	metrics.SetEngineRunning("audio", false)
	e.publishState(false)
}

// IsRunning reports whether the tick loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) run(t *tomb.Tomb) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()
	chunk := make([]float64, e.chunkSize)
	for {
		select {
		case <-t.Dying():
			return
		case <-ticker.C:
			e.step(chunk)
		}
	}
}

// step runs one analysis tick over the newest chunk.
func (e *Engine) step(chunk []float64) {
	if err := e.source.Read(chunk); err != nil {
		// A failed read is one silent tick, never a dead loop.
		for i := range chunk {
			chunk[i] = 0
		}
		e.logger.Debug("Audio read failed, substituting silence", "error", err)
		metrics.CaptureError("audio")
		e.publishCaptureError(err)
	}

	levels := e.analyzer.bandLevels(chunk)
	for i := range e.bands {
		e.bands[i].observe(levels[i], e.decayStep)
	}

	bass := e.bands[0].normalized()
	mid := math.Min(e.bands[1].normalized()*1.2, 1.0)
	treble := math.Min(e.bands[2].normalized()*1.5, 1.0)

	// Near-silence emits nothing rather than flooding the link with
	// near-black frames.
	if bass <= fadeThreshold && mid <= fadeThreshold && treble <= fadeThreshold {
		return
	}

	r := levelToChannel(bass, 1.2)
	g := levelToChannel(mid, 1)
	b := levelToChannel(treble, 1)
	e.sink.SendColor(r, g, b)
	metrics.FrameEmitted("audio")
	e.publishColor(r, g, b)
}

func (e *Engine) publishState(running bool) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.EngineStateChangedEvent{
		Engine:    "audio",
		Running:   running,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (e *Engine) publishColor(r, g, b uint8) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.ColorEmittedEvent{
		Source:    "audio",
		R:         r,
		G:         g,
		B:         b,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (e *Engine) publishCaptureError(err error) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.CaptureErrorEvent{
		Source:    "audio",
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
