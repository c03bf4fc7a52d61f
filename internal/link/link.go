// Package link owns the serial connection to the LED controller and exposes
// the narrow command surface the rest of the system drives it through.
//
// The link is deliberately fire-and-forget: commands sent while the link is
// closed (or still inside the post-connect settle delay) are dropped silently.
// Producers are never blocked or notified on a closed link, they just lose
// frames. Callers that care observe IsOpen.
package link

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/lumenode/internal/events"
	"github.com/smazurov/lumenode/internal/logging"
	"github.com/smazurov/lumenode/internal/metrics"
	"github.com/smazurov/lumenode/internal/protocol"
	"go.bug.st/serial"
	"gopkg.in/tomb.v2"
)

// DefaultSettleDelay is how long the link holds off commands after opening
// the port, giving the microcontroller's reset sequence time to finish.
const DefaultSettleDelay = 2 * time.Second

const readerIdlePoll = 100 * time.Millisecond

// Port is the transport the link writes commands to. go.bug.st/serial ports
// satisfy it; tests substitute an in-memory implementation.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(timeout time.Duration) error
}

// Opener opens a serial port with the given parameters.
type Opener func(port string, baud int) (Port, error)

func serialOpener(port string, baud int) (Port, error) {
	return serial.Open(port, &serial.Mode{BaudRate: baud})
}

// Options configures a Link.
type Options struct {
	Port string
	Baud int

	// SettleDelay overrides DefaultSettleDelay; zero means the default.
	SettleDelay time.Duration

	// ReadDiagnostics starts a background reader that drains the text lines
	// the firmware prints and forwards them to the log.
	ReadDiagnostics bool

	EventBus *events.Bus

	// Opener overrides the real serial opener; used by tests.
	Opener Opener
}

// Link is the single owner of the serial connection. Writes are serialized
// behind one mutex so a command's bytes never interleave with another's on
// the wire. The link does not arbitrate between producers; the coordinator
// guarantees only one is active at a time.
type Link struct {
	opener   Opener
	settle   time.Duration
	readDiag bool
	bus      *events.Bus
	logger   *slog.Logger

	mu       sync.Mutex
	port     Port
	portName string
	baud     int
	readyAt  time.Time
	reader   *tomb.Tomb
}

// New creates a Link. The link starts disconnected; call Connect to open it.
func New(opts *Options) *Link {
	settle := opts.SettleDelay
	if settle == 0 {
		settle = DefaultSettleDelay
	}
	opener := opts.Opener
	if opener == nil {
		opener = serialOpener
	}
	baud := opts.Baud
	if baud == 0 {
		baud = 9600
	}
	return &Link{
		opener:   opener,
		settle:   settle,
		readDiag: opts.ReadDiagnostics,
		bus:      opts.EventBus,
		logger:   logging.GetLogger("link"),
		portName: opts.Port,
		baud:     baud,
	}
}

// Connect opens the serial port if it is not already open. Empty port or
// zero baud keep the stored parameters. Failures are not returned; callers
// re-check IsOpen. An already-open link stays untouched, so a second Connect
// incurs no second settle delay.
func (l *Link) Connect(port string, baud int) {
	l.mu.Lock()
	if port != "" {
		l.portName = port
	}
	if baud > 0 {
		l.baud = baud
	}
	if l.port != nil {
		l.mu.Unlock()
		l.logger.Debug("Connect ignored, link already open", "port", l.portName)
		return
	}

	name, rate := l.portName, l.baud
	p, err := l.opener(name, rate)
	if err != nil {
		l.mu.Unlock()
		l.logger.Warn("Failed to open serial port", "port", name, "baud", rate, "error", err)
		return
	}
	l.port = p
	// Commands written before readyAt are dropped; the firmware is still
	// inside its reset sequence.
	l.readyAt = time.Now().Add(l.settle)
	l.mu.Unlock()

	l.logger.Info("Serial link opened", "port", name, "baud", rate, "settle", l.settle)
	metrics.SetLinkConnected(true)
	l.publishState(name, rate, true)

	if l.readDiag {
		l.startReader(p)
	}
}

// Disconnect closes the port if open. Safe to call repeatedly.
func (l *Link) Disconnect() {
	l.mu.Lock()
	p := l.port
	reader := l.reader
	name, rate := l.portName, l.baud
	l.port = nil
	l.reader = nil
	l.mu.Unlock()

	if p == nil {
		return
	}
	if reader != nil {
		reader.Kill(nil)
		// The reader polls with a short read timeout, so this join is
		// bounded by one idle poll interval.
		_ = reader.Wait()
	}
	if err := p.Close(); err != nil {
		l.logger.Warn("Error closing serial port", "port", name, "error", err)
	}

	l.logger.Info("Serial link closed", "port", name)
	metrics.SetLinkConnected(false)
	l.publishState(name, rate, false)
}

// Reconnect tears the link down, waits for the settle delay, and connects
// with optionally updated parameters. Used for explicit reconnects and for
// settings changes.
func (l *Link) Reconnect(port string, baud int) {
	l.Disconnect()
	time.Sleep(l.settle)
	l.Connect(port, baud)
}

// IsOpen reports whether the link holds an open port.
func (l *Link) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port != nil
}

// Settings returns the current port name and baud rate.
func (l *Link) Settings() (string, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.portName, l.baud
}

// SendTimeout enables or disables the firmware's idle timeout.
func (l *Link) SendTimeout(enabled bool) {
	l.write("timeout", protocol.EncodeTimeout(enabled))
}

// SetMode switches the firmware animation mode. Unknown mode names are
// logged and dropped, never transmitted.
func (l *Link) SetMode(mode string) {
	m, err := protocol.ParseMode(mode)
	if err != nil {
		l.logger.Warn("Dropping command for unknown mode", "mode", mode)
		metrics.CommandDropped("mode")
		return
	}
	l.logger.Debug("Setting mode", "mode", mode)
	l.write("mode", protocol.EncodeMode(m))
}

// SendColor sends one RGB frame.
func (l *Link) SendColor(r, g, b uint8) {
	l.write("color", protocol.EncodeColor(protocol.Color{R: r, G: g, B: b}))
}

// write performs a single atomic write of one encoded command, or drops it
// when the link is closed or not yet settled.
func (l *Link) write(command string, frame []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil || time.Now().Before(l.readyAt) {
		metrics.CommandDropped(command)
		return
	}
	if _, err := l.port.Write(frame); err != nil {
		l.logger.Warn("Serial write failed", "command", command, "error", err)
		metrics.CommandDropped(command)
		return
	}
	metrics.CommandWritten(command)
}

func (l *Link) publishState(port string, baud int, connected bool) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(events.LinkStateChangedEvent{
		Port:      port,
		Baud:      baud,
		Connected: connected,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
