package config

import (
	"os"
	"testing"
)

// testOptions mirrors the daemon's flat options layout.
type testOptions struct {
	Config string `help:"Config file path"`

	SerialPort string  `toml:"serial.port" env:"SERIAL_PORT"`
	SerialBaud int     `toml:"serial.baud" env:"SERIAL_BAUD"`
	ScreenFPS  float64 `toml:"screen.fps" env:"SCREEN_FPS"`
	AudioDebug bool    `toml:"audio.debug" env:"AUDIO_DEBUG"`
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "lumenode_*.toml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeTempConfig(t, `
[serial]
port = "/dev/ttyACM0"
baud = 115200

[screen]
fps = 15.0

[audio]
debug = true
`)

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.SerialPort != "/dev/ttyACM0" {
		t.Errorf("Expected SerialPort /dev/ttyACM0, got %q", opts.SerialPort)
	}
	if opts.SerialBaud != 115200 {
		t.Errorf("Expected SerialBaud 115200, got %d", opts.SerialBaud)
	}
	if opts.ScreenFPS != 15.0 {
		t.Errorf("Expected ScreenFPS 15.0, got %f", opts.ScreenFPS)
	}
	if !opts.AudioDebug {
		t.Error("Expected AudioDebug true")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, `
[serial]
port = "/dev/ttyACM0"
baud = 9600
`)

	t.Setenv("LUMENODE_SERIAL_PORT", "/dev/ttyUSB3")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.SerialPort != "/dev/ttyUSB3" {
		t.Errorf("Env var should override file, got %q", opts.SerialPort)
	}
	if opts.SerialBaud != 9600 {
		t.Errorf("File value should survive for untouched fields, got %d", opts.SerialBaud)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &testOptions{Config: "/nonexistent/lumenode.toml", SerialBaud: 9600}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("Missing config file should not error: %v", err)
	}
	if opts.SerialBaud != 9600 {
		t.Errorf("Defaults should survive a missing file, got %d", opts.SerialBaud)
	}
}

func TestLoadConfigMalformedTOML(t *testing.T) {
	path := writeTempConfig(t, "[serial\nport=")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err == nil {
		t.Error("Malformed TOML should return an error")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Port", "port"},
		{"SerialPort", "serial-port"},
		{"LoggingLevel", "logging-level"},
	}
	for _, tt := range tests {
		if got := fieldNameToFlag(tt.in); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadSerialSettings(t *testing.T) {
	path := writeTempConfig(t, `
[serial]
port = "COM11"
baud = 9600
`)

	settings, err := LoadSerialSettings(path)
	if err != nil {
		t.Fatalf("LoadSerialSettings failed: %v", err)
	}
	if settings.Port != "COM11" || settings.Baud != 9600 {
		t.Errorf("Got %+v", settings)
	}
}
