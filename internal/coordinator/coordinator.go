// Package coordinator enforces the single-active-producer rule: at most one
// of solid color, pattern, audio engine, or screen engine drives the device
// at any time. Every activation first deactivates whatever came before.
package coordinator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/lumenode/internal/events"
	"github.com/smazurov/lumenode/internal/logging"
	"github.com/smazurov/lumenode/internal/protocol"
)

// Device is the command surface the coordinator drives directly.
type Device interface {
	SetMode(mode string)
	SendColor(r, g, b uint8)
	SendTimeout(enabled bool)
}

// AudioEngine is the audio producer as the coordinator sees it.
type AudioEngine interface {
	Start() error
	Stop()
	IsRunning() bool
}

// ScreenEngine is the screen producer as the coordinator sees it.
type ScreenEngine interface {
	Start()
	Stop()
	IsRunning() bool
}

// Mode names reported by Mode and published on transitions.
const (
	ModeOff     = "off"
	ModeSolid   = "solid"
	ModePattern = "pattern"
	ModeAudio   = "audio"
	ModeScreen  = "screen"
)

// Coordinator owns mode transitions. It holds no timers; the active producer
// runs its own loop and the coordinator only starts and stops them.
type Coordinator struct {
	device Device
	audio  AudioEngine
	screen ScreenEngine
	bus    *events.Bus
	logger *slog.Logger

	mu     sync.Mutex
	mode   string
	detail string
}

// New creates a Coordinator in the off state.
func New(device Device, audio AudioEngine, screen ScreenEngine, bus *events.Bus) *Coordinator {
	return &Coordinator{
		device: device,
		audio:  audio,
		screen: screen,
		bus:    bus,
		logger: logging.GetLogger("coordinator"),
		mode:   ModeOff,
	}
}

// Deactivate switches the device off and stops any running producer.
func (c *Coordinator) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivate()
	c.setMode(ModeOff, "")
}

// SetSolid activates static-color mode with the given color.
func (c *Coordinator) SetSolid(r, g, b uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivate()
	c.device.SendTimeout(false)
	c.device.SendColor(r, g, b)
	c.setMode(ModeSolid, "")
}

// SetPattern activates a firmware animation pattern. Unknown pattern names
// are rejected before any transition happens.
func (c *Coordinator) SetPattern(name string) error {
	if _, err := protocol.ParseMode(name); err != nil {
		return fmt.Errorf("setting pattern: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivate()
	c.device.SendTimeout(false)
	c.device.SetMode(name)
	c.setMode(ModePattern, name)
	return nil
}

// StartAudio activates the audio-reactive engine. The firmware idle timeout
// is enabled so the strip goes dark when the music stops.
func (c *Coordinator) StartAudio() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivate()
	if err := c.audio.Start(); err != nil {
		c.setMode(ModeOff, "")
		return err
	}
	// Only after a successful start: a failed start must not leave the
	// idle timeout armed on a strip nothing is feeding.
	c.device.SendTimeout(true)
	c.setMode(ModeAudio, "")
	return nil
}

// StartScreen activates the screen-reactive engine.
func (c *Coordinator) StartScreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivate()
	c.screen.Start()
	c.setMode(ModeScreen, "")
}

// StopAudio stops the audio engine if it is running.
func (c *Coordinator) StopAudio() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audio != nil && c.audio.IsRunning() {
		c.audio.Stop()
	}
	if c.mode == ModeAudio {
		c.setMode(ModeOff, "")
	}
}

// StopScreen stops the screen engine if it is running.
func (c *Coordinator) StopScreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen != nil && c.screen.IsRunning() {
		c.screen.Stop()
	}
	if c.mode == ModeScreen {
		c.setMode(ModeOff, "")
	}
}

// Mode returns the active mode and its detail (pattern name, if any).
func (c *Coordinator) Mode() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode, c.detail
}

// deactivate stops everything that could still emit. Producers are stopped
// synchronously, so nothing from the previous mode reaches the wire after
// this returns. Callers hold c.mu.
func (c *Coordinator) deactivate() {
	c.device.SetMode("OFF")
	if c.audio != nil && c.audio.IsRunning() {
		c.audio.Stop()
	}
	if c.screen != nil && c.screen.IsRunning() {
		c.screen.Stop()
	}
}

func (c *Coordinator) setMode(mode, detail string) {
	if c.mode == mode && c.detail == detail {
		return
	}
	c.mode = mode
	c.detail = detail
	c.logger.Info("Mode changed", "mode", mode, "detail", detail)
	if c.bus != nil {
		c.bus.Publish(events.ModeChangedEvent{
			Mode:      mode,
			Detail:    detail,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
