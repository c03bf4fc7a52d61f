package protocol

import (
	"bytes"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name string
		want Mode
	}{
		{"OFF", 0},
		{"Solid", 0},
		{"Fade", 1},
		{"Cycle", 2},
		{"Rainbow Cycle", 3},
		{"Breathing", 4},
		{"Random", 5},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.name)
		if err != nil {
			t.Errorf("ParseMode(%q) returned error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestParseModeUnknown(t *testing.T) {
	for _, name := range []string{"", "off", "rainbow", "Strobe", "Rainbow  Cycle"} {
		if _, err := ParseMode(name); err == nil {
			t.Errorf("ParseMode(%q) accepted an unknown mode", name)
		}
	}
}

func TestEncodeMode(t *testing.T) {
	for code := Mode(0); code <= ModeRandom; code++ {
		frame := EncodeMode(code)
		if len(frame) != 2 {
			t.Fatalf("EncodeMode(%d) produced %d bytes, want 2", code, len(frame))
		}
		if frame[0] != TagMode {
			t.Errorf("EncodeMode(%d) tag = 0x%02x, want 0x%02x", code, frame[0], TagMode)
		}
		if frame[1] != byte(code) {
			t.Errorf("EncodeMode(%d) payload = %d", code, frame[1])
		}
	}
}

func TestEncodeTimeout(t *testing.T) {
	if !bytes.Equal(EncodeTimeout(true), []byte{0x01, 1}) {
		t.Error("EncodeTimeout(true) != [0x01, 1]")
	}
	if !bytes.Equal(EncodeTimeout(false), []byte{0x01, 0}) {
		t.Error("EncodeTimeout(false) != [0x01, 0]")
	}
}

func TestEncodeColor(t *testing.T) {
	tests := []struct {
		c    Color
		want []byte
	}{
		{Color{0, 0, 0}, []byte{0x03, 0, 0, 0}},
		{Color{255, 255, 255}, []byte{0x03, 255, 255, 255}},
		{Color{12, 200, 99}, []byte{0x03, 12, 200, 99}},
	}
	for _, tt := range tests {
		got := EncodeColor(tt.c)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("EncodeColor(%v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestNewColorClamps(t *testing.T) {
	c := NewColor(-10, 300, 128)
	if c.R != 0 || c.G != 255 || c.B != 128 {
		t.Errorf("NewColor(-10, 300, 128) = %v, want {0 255 128}", c)
	}
}
