package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/smazurov/lumenode/internal/logging"
	"log/slog"
)

// Source is a mono sample stream. Read fills dst with the most recent
// samples without blocking on the capture device; a backlog in the stream is
// fine because only the newest chunk matters.
type Source interface {
	Start() error
	Stop()
	Read(dst []float64) error
}

// CaptureSource captures from the default input device via miniaudio. The
// device callback keeps only the latest chunk of samples; older data is
// discarded unread.
type CaptureSource struct {
	chunkSize  int
	sampleRate int
	logger     *slog.Logger

	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	latest []float64
}

// NewCaptureSource creates a capture source; Start opens the device.
func NewCaptureSource(chunkSize, sampleRate int) *CaptureSource {
	return &CaptureSource{
		chunkSize:  chunkSize,
		sampleRate: sampleRate,
		logger:     logging.GetLogger("audio"),
	}
}

// Start opens and starts the default capture device. Calling Start on a
// started source is a no-op.
func (s *CaptureSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != nil {
		return nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		s.logger.Debug("miniaudio", "message", strings.TrimSpace(message))
	})
	if err != nil {
		return fmt.Errorf("initializing audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(s.sampleRate)
	cfg.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: s.onSamples,
	})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("opening capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("starting capture device: %w", err)
	}

	s.ctx = ctx
	s.device = device
	s.logger.Info("Audio capture started", "rate", s.sampleRate, "chunk", s.chunkSize)
	return nil
}

// onSamples runs on the miniaudio device thread. Samples arrive as
// little-endian float32.
func (s *CaptureSource) onSamples(_, in []byte, frameCount uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return
	}
	for i := 0; i < int(frameCount) && (i+1)*4 <= len(in); i++ {
		bits := binary.LittleEndian.Uint32(in[i*4:])
		s.latest = append(s.latest, float64(math.Float32frombits(bits)))
	}
	if len(s.latest) > s.chunkSize {
		s.latest = s.latest[len(s.latest)-s.chunkSize:]
	}
}

// Read copies the most recent samples into dst, zero-filling any remainder.
// It never blocks waiting for the device.
func (s *CaptureSource) Read(dst []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return errors.New("audio source not started")
	}
	n := copy(dst, s.latest)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// Stop tears the device down. Safe to call repeatedly.
func (s *CaptureSource) Stop() {
	s.mu.Lock()
	device := s.device
	ctx := s.ctx
	s.device = nil
	s.ctx = nil
	s.latest = nil
	s.mu.Unlock()

	// Uninit joins the device thread, so the mutex must not be held here
	// or the data callback could deadlock against us.
	if device != nil {
		device.Uninit()
	}
	if ctx != nil {
		_ = ctx.Uninit()
		ctx.Free()
	}
	if device != nil {
		s.logger.Info("Audio capture stopped")
	}
}
