package api

import (
	"image"
	"net/http"

	"github.com/smazurov/lumenode/internal/events"
	"github.com/smazurov/lumenode/internal/link"
)

// LinkService is the device link as the API consumes it.
type LinkService interface {
	Connect(port string, baud int)
	Disconnect()
	Reconnect(port string, baud int)
	IsOpen() bool
	Settings() (port string, baud int)
	SendTimeout(enabled bool)
}

// ModeService is the mode coordinator as the API consumes it.
type ModeService interface {
	SetSolid(r, g, b uint8)
	SetPattern(name string) error
	StartAudio() error
	StopAudio()
	StartScreen()
	StopScreen()
	Deactivate()
	Mode() (mode string, detail string)
}

// AudioService exposes the audio engine's observable state.
type AudioService interface {
	IsRunning() bool
}

// ScreenService exposes the screen engine's observable state and its
// runtime knobs.
type ScreenService interface {
	IsRunning() bool
	SelectSnapshot(x, y, width, height int)
	ClearSnapshot()
	Snapshot() *image.Rectangle
	UpdateFPS(fps int)
	FPS() int
}

// Options wires the API server to the rest of the daemon.
type Options struct {
	AuthUsername string
	AuthPassword string

	Link   LinkService
	Modes  ModeService
	Audio  AudioService
	Screen ScreenService

	EventBus *events.Bus

	// ListPorts enumerates serial ports; defaults to link.Ports.
	ListPorts func() ([]link.PortInfo, error)

	// PrometheusHandler serves /metrics when set.
	PrometheusHandler http.Handler
}
