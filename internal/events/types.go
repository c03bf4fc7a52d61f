package events

// Event type constants for kelindar/event.
const (
	TypeLinkStateChanged uint32 = iota + 1
	TypeModeChanged
	TypeColorEmitted
	TypeEngineStateChanged
	TypeCaptureError
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LinkStateChangedEvent is published when the serial link opens or closes.
type LinkStateChangedEvent struct {
	Port      string `json:"port" example:"/dev/ttyUSB0" doc:"Serial port name"`
	Baud      int    `json:"baud" example:"9600" doc:"Baud rate"`
	Connected bool   `json:"connected" example:"true" doc:"Whether the link is open"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LinkStateChangedEvent.
func (e LinkStateChangedEvent) Type() uint32 { return TypeLinkStateChanged }

// ModeChangedEvent is published by the coordinator on every mode transition.
type ModeChangedEvent struct {
	Mode      string `json:"mode" example:"audio" doc:"Active mode: solid, pattern, audio, screen, off"`
	Detail    string `json:"detail,omitempty" example:"Breathing" doc:"Pattern name for pattern mode"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ModeChangedEvent.
func (e ModeChangedEvent) Type() uint32 { return TypeModeChanged }

// ColorEmittedEvent is published for every color frame a producer emits.
type ColorEmittedEvent struct {
	Source    string `json:"source" example:"audio" doc:"Producer that emitted the frame"`
	R         uint8  `json:"r" example:"255" doc:"Red channel"`
	G         uint8  `json:"g" example:"128" doc:"Green channel"`
	B         uint8  `json:"b" example:"0" doc:"Blue channel"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ColorEmittedEvent.
func (e ColorEmittedEvent) Type() uint32 { return TypeColorEmitted }

// EngineStateChangedEvent is published when a reactive engine starts or stops.
type EngineStateChangedEvent struct {
	Engine    string `json:"engine" example:"screen" doc:"Engine name: audio or screen"`
	Running   bool   `json:"running" example:"true" doc:"Whether the engine is running"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for EngineStateChangedEvent.
func (e EngineStateChangedEvent) Type() uint32 { return TypeEngineStateChanged }

// CaptureErrorEvent is published when an audio or screen capture fails.
// The engines recover in place; this event exists for observability only.
type CaptureErrorEvent struct {
	Source    string `json:"source" example:"screen" doc:"Engine that hit the failure"`
	Error     string `json:"error" example:"no active displays" doc:"Detailed error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureErrorEvent.
func (e CaptureErrorEvent) Type() uint32 { return TypeCaptureError }

// LogEntryEvent carries a log entry for streaming consumers.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"link" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
