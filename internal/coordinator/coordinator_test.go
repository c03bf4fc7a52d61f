package coordinator

import (
	"errors"
	"sync"
	"testing"
)

type deviceCall struct {
	op      string
	mode    string
	r, g, b uint8
	enabled bool
}

type fakeDevice struct {
	mu    sync.Mutex
	calls []deviceCall
}

func (d *fakeDevice) SetMode(mode string) {
	d.record(deviceCall{op: "mode", mode: mode})
}

func (d *fakeDevice) SendColor(r, g, b uint8) {
	d.record(deviceCall{op: "color", r: r, g: g, b: b})
}

func (d *fakeDevice) SendTimeout(enabled bool) {
	d.record(deviceCall{op: "timeout", enabled: enabled})
}

func (d *fakeDevice) record(c deviceCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, c)
}

func (d *fakeDevice) all() []deviceCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]deviceCall(nil), d.calls...)
}

type fakeEngine struct {
	running  bool
	startErr error
	stops    int
}

func (e *fakeEngine) Start() error {
	if e.startErr != nil {
		return e.startErr
	}
	e.running = true
	return nil
}

func (e *fakeEngine) Stop() {
	e.running = false
	e.stops++
}

func (e *fakeEngine) IsRunning() bool { return e.running }

// screenFake adapts fakeEngine to the error-less screen Start.
type screenFake struct{ fakeEngine }

func (e *screenFake) Start() { e.running = true }

func newTestCoordinator() (*Coordinator, *fakeDevice, *fakeEngine, *screenFake) {
	device := &fakeDevice{}
	audio := &fakeEngine{}
	screen := &screenFake{}
	return New(device, audio, screen, nil), device, audio, screen
}

func TestSetSolidSequence(t *testing.T) {
	c, device, _, _ := newTestCoordinator()
	c.SetSolid(255, 100, 0)

	want := []deviceCall{
		{op: "mode", mode: "OFF"},
		{op: "timeout", enabled: false},
		{op: "color", r: 255, g: 100, b: 0},
	}
	got := device.all()
	if len(got) != len(want) {
		t.Fatalf("got %d device calls, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if mode, _ := c.Mode(); mode != ModeSolid {
		t.Errorf("mode = %q, want %q", mode, ModeSolid)
	}
}

func TestSetPatternSequence(t *testing.T) {
	c, device, _, _ := newTestCoordinator()
	if err := c.SetPattern("Breathing"); err != nil {
		t.Fatalf("SetPattern: %v", err)
	}

	got := device.all()
	if len(got) != 3 || got[2].op != "mode" || got[2].mode != "Breathing" {
		t.Errorf("device calls = %+v, want OFF, timeout off, mode Breathing", got)
	}
	if mode, detail := c.Mode(); mode != ModePattern || detail != "Breathing" {
		t.Errorf("mode = %q/%q, want pattern/Breathing", mode, detail)
	}
}

func TestSetPatternRejectsUnknownName(t *testing.T) {
	c, device, _, _ := newTestCoordinator()
	if err := c.SetPattern("Strobe"); err == nil {
		t.Fatal("unknown pattern accepted")
	}
	if got := device.all(); len(got) != 0 {
		t.Errorf("rejected pattern still drove the device: %+v", got)
	}
	if mode, _ := c.Mode(); mode != ModeOff {
		t.Errorf("mode = %q after rejected pattern, want off", mode)
	}
}

func TestStartAudioEnablesTimeout(t *testing.T) {
	c, device, audio, _ := newTestCoordinator()
	if err := c.StartAudio(); err != nil {
		t.Fatalf("StartAudio: %v", err)
	}
	if !audio.IsRunning() {
		t.Error("audio engine not running")
	}

	var sawTimeoutOn bool
	for _, call := range device.all() {
		if call.op == "timeout" && call.enabled {
			sawTimeoutOn = true
		}
	}
	if !sawTimeoutOn {
		t.Error("audio mode did not enable the idle timeout")
	}
}

func TestStartAudioFailure(t *testing.T) {
	c, device, audio, _ := newTestCoordinator()
	audio.startErr = errors.New("no capture device")
	if err := c.StartAudio(); err == nil {
		t.Fatal("StartAudio swallowed the source failure")
	}
	if mode, _ := c.Mode(); mode != ModeOff {
		t.Errorf("mode = %q after failed start, want off", mode)
	}
	for _, call := range device.all() {
		if call.op == "timeout" && call.enabled {
			t.Error("idle timeout armed even though the engine never started")
		}
	}
}

func TestActivationStopsRunningProducer(t *testing.T) {
	c, device, audio, screen := newTestCoordinator()

	if err := c.StartAudio(); err != nil {
		t.Fatalf("StartAudio: %v", err)
	}
	c.StartScreen()
	if audio.IsRunning() {
		t.Error("audio still running after screen activation")
	}
	if !screen.IsRunning() {
		t.Error("screen not running after activation")
	}

	c.SetSolid(1, 2, 3)
	if screen.IsRunning() {
		t.Error("screen still running after solid activation")
	}

	// The device was switched off before the solid color was sent.
	calls := device.all()
	lastOff, colorAt := -1, -1
	for i, call := range calls {
		if call.op == "mode" && call.mode == "OFF" {
			lastOff = i
		}
		if call.op == "color" {
			colorAt = i
		}
	}
	if colorAt < lastOff {
		t.Errorf("solid color emitted at %d before final OFF at %d", colorAt, lastOff)
	}
}

func TestStopAudioClearsMode(t *testing.T) {
	c, _, audio, _ := newTestCoordinator()
	if err := c.StartAudio(); err != nil {
		t.Fatalf("StartAudio: %v", err)
	}
	c.StopAudio()
	if audio.IsRunning() {
		t.Error("audio still running after StopAudio")
	}
	if mode, _ := c.Mode(); mode != ModeOff {
		t.Errorf("mode = %q after StopAudio, want off", mode)
	}

	// Stopping one engine must not disturb an unrelated active mode.
	c.SetSolid(5, 5, 5)
	c.StopScreen()
	if mode, _ := c.Mode(); mode != ModeSolid {
		t.Errorf("mode = %q, StopScreen clobbered solid mode", mode)
	}
}

func TestDeactivateStopsOnlyRunning(t *testing.T) {
	c, _, audio, screen := newTestCoordinator()
	c.Deactivate()
	if audio.stops != 0 || screen.stops != 0 {
		t.Errorf("stopped idle engines: audio %d, screen %d", audio.stops, screen.stops)
	}

	c.StartScreen()
	c.Deactivate()
	if screen.stops != 1 {
		t.Errorf("screen stops = %d, want 1", screen.stops)
	}
	if audio.stops != 0 {
		t.Errorf("audio stopped while never running")
	}
	if mode, _ := c.Mode(); mode != ModeOff {
		t.Errorf("mode = %q after Deactivate, want off", mode)
	}
}
