package audio

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	mu      sync.Mutex
	samples []float64
	err     error
	starts  int
	stops   int
}

func (s *fakeSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	return nil
}

func (s *fakeSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

func (s *fakeSource) Read(dst []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	n := copy(dst, s.samples)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

type frame struct{ r, g, b uint8 }

type fakeSink struct {
	mu     sync.Mutex
	frames []frame
}

func (s *fakeSink) SendColor(r, g, b uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame{r, g, b})
}

func (s *fakeSink) all() []frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]frame(nil), s.frames...)
}

func sine(freq float64, n, rate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
	}
	return out
}

func TestBandObserveAdoptsAboveGate(t *testing.T) {
	var b bandState
	b.max = 1
	b.observe(0.5, 0.001)
	if b.current != 0.5 {
		t.Errorf("current = %v, want 0.5", b.current)
	}
	if b.max != 1 {
		t.Errorf("max = %v, raised below previous maximum", b.max)
	}
	b.observe(1.5, 0.001)
	if b.max != 1.5 {
		t.Errorf("max = %v, want 1.5", b.max)
	}
}

func TestBandDecayMonotonic(t *testing.T) {
	var b bandState
	b.max = 1
	b.observe(0.05, 0) // above gate, adopted
	prev := b.current
	step := 0.01
	for i := 0; i < 10; i++ {
		b.observe(0.001, step) // below gate, decays
		if b.current > 0 && b.current >= prev {
			t.Fatalf("tick %d: level %v did not decrease from %v", i, b.current, prev)
		}
		prev = b.current
	}
	if b.current != 0 {
		t.Errorf("level = %v after full decay, want exactly 0", b.current)
	}
	b.observe(0.001, step)
	if b.current != 0 {
		t.Errorf("level left 0 without a gated measurement: %v", b.current)
	}
}

func TestNormalizedNeverExceedsOne(t *testing.T) {
	var b bandState
	b.max = 1
	for _, level := range []float64{0.1, 2.5, 0.03, 7.0, 0.5, 100} {
		b.observe(level, 0.001)
		if n := b.normalized(); n > 1.0 {
			t.Errorf("observe(%v): normalized = %v > 1.0", level, n)
		}
	}
}

func TestLevelToChannel(t *testing.T) {
	for _, level := range []float64{0, 0.01, 0.05} {
		if got := levelToChannel(level, 1.2); got != 0 {
			t.Errorf("levelToChannel(%v) = %d, want 0", level, got)
		}
	}
	prev := uint8(0)
	for level := 0.06; level <= 1.0; level += 0.01 {
		got := levelToChannel(level, 1)
		if got < prev {
			t.Errorf("levelToChannel(%v) = %d < %d, mapping not monotonic", level, got, prev)
		}
		prev = got
	}
	if got := levelToChannel(1.0, 1); got != 255 {
		t.Errorf("levelToChannel(1.0, 1) = %d, want 255", got)
	}
	// Saturates rather than wrapping.
	if got := levelToChannel(1.0, 1.2); got != 255 {
		t.Errorf("levelToChannel(1.0, 1.2) = %d, want 255", got)
	}
}

func TestAnalyzerIsolatesBassTone(t *testing.T) {
	a := newAnalyzer(DefaultChunkSize, DefaultSampleRate)
	levels := a.bandLevels(sine(100, DefaultChunkSize, DefaultSampleRate))
	if levels[0] <= levels[1] || levels[0] <= levels[2] {
		t.Errorf("100 Hz tone: bass %v not dominant over mid %v / treble %v",
			levels[0], levels[1], levels[2])
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 1000: 1024, 1024: 1024, 1025: 2048}
	for in, want := range cases {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSilentChunksEmitNothing(t *testing.T) {
	source := &fakeSource{}
	sink := &fakeSink{}
	e := NewEngine(&Options{Source: source, Sink: sink})

	chunk := make([]float64, e.chunkSize)
	for i := 0; i < 10; i++ {
		e.step(chunk)
	}

	for i := range e.bands {
		if e.bands[i].current != 0 {
			t.Errorf("band %d level = %v after silence, want exactly 0", i, e.bands[i].current)
		}
	}
	if got := sink.all(); len(got) != 0 {
		t.Errorf("silence produced %d color frames", len(got))
	}
}

func TestBassToneEmitsRed(t *testing.T) {
	source := &fakeSource{samples: sine(100, DefaultChunkSize, DefaultSampleRate)}
	sink := &fakeSink{}
	e := NewEngine(&Options{Source: source, Sink: sink})

	chunk := make([]float64, e.chunkSize)
	e.step(chunk)

	frames := sink.all()
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	// The band maximum was just set by this very measurement, so the
	// normalized bass level is 1.0 and red saturates.
	if frames[0].r != 255 {
		t.Errorf("red = %d, want 255", frames[0].r)
	}
}

func TestReadFailureIsOneSilentTick(t *testing.T) {
	source := &fakeSource{err: errors.New("stream underflow")}
	sink := &fakeSink{}
	e := NewEngine(&Options{Source: source, Sink: sink})

	chunk := make([]float64, e.chunkSize)
	e.step(chunk)
	if got := sink.all(); len(got) != 0 {
		t.Errorf("failed read emitted %d frames", len(got))
	}
}

func TestEngineStartStop(t *testing.T) {
	source := &fakeSource{}
	sink := &fakeSink{}
	e := NewEngine(&Options{
		Source:       source,
		Sink:         sink,
		TickInterval: 5 * time.Millisecond,
	})

	if e.IsRunning() {
		t.Fatal("engine running before Start")
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !e.IsRunning() {
		t.Error("engine not running after Start")
	}
	// Second Start is a no-op.
	if err := e.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	e.Stop()
	if e.IsRunning() {
		t.Error("engine still running after Stop")
	}
	e.Stop() // repeatable

	source.mu.Lock()
	starts, stops := source.starts, source.stops
	source.mu.Unlock()
	if starts != 1 || stops != 1 {
		t.Errorf("source starts/stops = %d/%d, want 1/1", starts, stops)
	}
}

func TestBandMaximumSurvivesRestart(t *testing.T) {
	source := &fakeSource{samples: sine(100, DefaultChunkSize, DefaultSampleRate)}
	sink := &fakeSink{}
	e := NewEngine(&Options{Source: source, Sink: sink})

	chunk := make([]float64, e.chunkSize)
	e.step(chunk)
	max := e.bands[0].max

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Stop()

	if e.bands[0].max != max {
		t.Errorf("band maximum %v changed to %v across restart", max, e.bands[0].max)
	}
}
