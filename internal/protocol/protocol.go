// Package protocol implements the byte-level command protocol spoken by the
// LED controller firmware. Every command is a single write: one tag byte
// followed by a fixed-width payload.
package protocol

import "fmt"

// Command tag bytes (byte 0 of every frame).
const (
	TagTimeout byte = 0x01
	TagMode    byte = 0x02
	TagColor   byte = 0x03
)

// Mode is a firmware animation mode code.
type Mode byte

const (
	ModeSolid Mode = iota
	ModeFade
	ModeCycle
	ModeRainbowCycle
	ModeBreathing
	ModeRandom
)

// ModeOff shares code 0 with ModeSolid; the firmware treats "solid with no
// color set" as off.
const ModeOff = ModeSolid

var modeCodes = map[string]Mode{
	"OFF":           ModeOff,
	"Solid":         ModeSolid,
	"Fade":          ModeFade,
	"Cycle":         ModeCycle,
	"Rainbow Cycle": ModeRainbowCycle,
	"Breathing":     ModeBreathing,
	"Random":        ModeRandom,
}

// ModeNames returns the accepted mode names in firmware code order.
func ModeNames() []string {
	return []string{"OFF", "Solid", "Fade", "Cycle", "Rainbow Cycle", "Breathing", "Random"}
}

// ParseMode maps a mode name to its firmware code. Unknown names are
// rejected here so they never reach the wire.
func ParseMode(name string) (Mode, error) {
	m, ok := modeCodes[name]
	if !ok {
		return 0, fmt.Errorf("unknown mode: %q", name)
	}
	return m, nil
}

// Color is one RGB frame produced by a color source.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// NewColor builds a Color with each channel clamped to [0, 255].
func NewColor(r, g, b int) Color {
	return Color{clampChannel(r), clampChannel(g), clampChannel(b)}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// EncodeTimeout encodes the idle-timeout toggle command.
func EncodeTimeout(enabled bool) []byte {
	var val byte
	if enabled {
		val = 1
	}
	return []byte{TagTimeout, val}
}

// EncodeMode encodes a mode change command.
func EncodeMode(m Mode) []byte {
	return []byte{TagMode, byte(m)}
}

// EncodeColor encodes a color frame command.
func EncodeColor(c Color) []byte {
	return []byte{TagColor, c.R, c.G, c.B}
}
