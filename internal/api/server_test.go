package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smazurov/lumenode/internal/link"
)

// mockLink is a test implementation of LinkService.
type mockLink struct {
	open       bool
	port       string
	baud       int
	reconnects int
	timeout    bool
}

func (m *mockLink) Connect(port string, baud int) {
	if port != "" {
		m.port = port
	}
	if baud > 0 {
		m.baud = baud
	}
	m.open = true
}

func (m *mockLink) Disconnect() { m.open = false }

func (m *mockLink) Reconnect(port string, baud int) {
	m.reconnects++
	m.Disconnect()
	m.Connect(port, baud)
}

func (m *mockLink) IsOpen() bool { return m.open }

func (m *mockLink) Settings() (string, int) { return m.port, m.baud }

func (m *mockLink) SendTimeout(enabled bool) { m.timeout = enabled }

// mockModes is a test implementation of ModeService.
type mockModes struct {
	mode    string
	detail  string
	lastRGB [3]uint8
}

func (m *mockModes) SetSolid(r, g, b uint8) {
	m.mode = "solid"
	m.lastRGB = [3]uint8{r, g, b}
}

func (m *mockModes) SetPattern(name string) error {
	if name != "Breathing" {
		return fmt.Errorf("unknown mode: %q", name)
	}
	m.mode, m.detail = "pattern", name
	return nil
}

func (m *mockModes) StartAudio() error { m.mode = "audio"; return nil }
func (m *mockModes) StopAudio()        { m.mode = "off" }
func (m *mockModes) StartScreen()      { m.mode = "screen" }
func (m *mockModes) StopScreen()       { m.mode = "off" }
func (m *mockModes) Deactivate()       { m.mode = "off" }

func (m *mockModes) Mode() (string, string) { return m.mode, m.detail }

type mockEngineStatus struct{ running bool }

func (m *mockEngineStatus) IsRunning() bool { return m.running }

type mockScreen struct {
	mockEngineStatus
	fps    int
	region *image.Rectangle
}

func (m *mockScreen) SelectSnapshot(x, y, w, h int) {
	r := image.Rect(x, y, x+w, y+h)
	m.region = &r
}

func (m *mockScreen) ClearSnapshot()             { m.region = nil }
func (m *mockScreen) Snapshot() *image.Rectangle { return m.region }
func (m *mockScreen) UpdateFPS(fps int)          { m.fps = fps }
func (m *mockScreen) FPS() int                   { return m.fps }

func newTestServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()
	if opts.Link == nil {
		opts.Link = &mockLink{port: "/dev/ttyUSB0", baud: 9600}
	}
	if opts.Modes == nil {
		opts.Modes = &mockModes{mode: "off"}
	}
	if opts.Audio == nil {
		opts.Audio = &mockEngineStatus{}
	}
	if opts.Screen == nil {
		opts.Screen = &mockScreen{fps: 10}
	}
	if opts.ListPorts == nil {
		opts.ListPorts = func() ([]link.PortInfo, error) {
			return []link.PortInfo{{Name: "/dev/ttyUSB0", Description: "USB Serial (1a86:7523)", IsUSB: true}}, nil
		}
	}
	srv := httptest.NewServer(NewServer(opts).GetMux())
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &Options{})
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &body)
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestSolidColorEndpoint(t *testing.T) {
	modes := &mockModes{mode: "off"}
	srv := newTestServer(t, &Options{Modes: modes})

	resp, err := http.Post(srv.URL+"/api/mode/solid", "application/json",
		strings.NewReader(`{"r":255,"g":100,"b":0}`))
	if err != nil {
		t.Fatalf("POST /api/mode/solid: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Mode string `json:"mode"`
	}
	decodeBody(t, resp, &body)
	if body.Mode != "solid" {
		t.Errorf("mode = %q, want solid", body.Mode)
	}
	if modes.lastRGB != [3]uint8{255, 100, 0} {
		t.Errorf("color = %v, want [255 100 0]", modes.lastRGB)
	}
}

func TestPatternEndpointRejectsUnknown(t *testing.T) {
	srv := newTestServer(t, &Options{})

	resp, err := http.Post(srv.URL+"/api/mode/pattern", "application/json",
		strings.NewReader(`{"name":"Strobe"}`))
	if err != nil {
		t.Fatalf("POST /api/mode/pattern: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestLinkConnectEndpoint(t *testing.T) {
	lnk := &mockLink{port: "/dev/ttyUSB0", baud: 9600}
	srv := newTestServer(t, &Options{Link: lnk})

	resp, err := http.Post(srv.URL+"/api/link/connect", "application/json",
		strings.NewReader(`{"port":"/dev/ttyACM1","baud":115200}`))
	if err != nil {
		t.Fatalf("POST /api/link/connect: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Connected bool   `json:"connected"`
		Port      string `json:"port"`
		Baud      int    `json:"baud"`
	}
	decodeBody(t, resp, &body)
	if !body.Connected || body.Port != "/dev/ttyACM1" || body.Baud != 115200 {
		t.Errorf("link status = %+v, want connected on /dev/ttyACM1@115200", body)
	}
}

func TestLinkTimeoutEndpoint(t *testing.T) {
	lnk := &mockLink{open: true, port: "/dev/ttyUSB0", baud: 9600, timeout: true}
	srv := newTestServer(t, &Options{Link: lnk})

	resp, err := http.Post(srv.URL+"/api/link/timeout", "application/json",
		strings.NewReader(`{"enabled":false}`))
	if err != nil {
		t.Fatalf("POST /api/link/timeout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if lnk.timeout {
		t.Error("timeout still enabled after disable request")
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	screen := &mockScreen{fps: 10}
	srv := newTestServer(t, &Options{Screen: screen})

	resp, err := http.Post(srv.URL+"/api/screen/snapshot", "application/json",
		strings.NewReader(`{"x":10,"y":10,"width":100,"height":80}`))
	if err != nil {
		t.Fatalf("POST /api/screen/snapshot: %v", err)
	}
	resp.Body.Close()
	if screen.region == nil || *screen.region != image.Rect(10, 10, 110, 90) {
		t.Errorf("region = %v, want (10,10)-(110,90)", screen.region)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/screen/snapshot", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/screen/snapshot: %v", err)
	}
	resp.Body.Close()
	if screen.region != nil {
		t.Errorf("region = %v after clear, want nil", screen.region)
	}
}

func TestPortListEndpoint(t *testing.T) {
	srv := newTestServer(t, &Options{})
	resp, err := http.Get(srv.URL + "/api/ports")
	if err != nil {
		t.Fatalf("GET /api/ports: %v", err)
	}
	var body struct {
		Ports []link.PortInfo `json:"ports"`
	}
	decodeBody(t, resp, &body)
	if len(body.Ports) != 1 || body.Ports[0].Name != "/dev/ttyUSB0" {
		t.Errorf("ports = %+v", body.Ports)
	}
}

func TestBasicAuth(t *testing.T) {
	srv := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret"})

	// Protected endpoint without credentials.
	resp, err := http.Get(srv.URL + "/api/mode")
	if err != nil {
		t.Fatalf("GET /api/mode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	// Health stays open.
	resp, err = http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	// Correct credentials pass.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/mode", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/mode with auth: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", resp.StatusCode)
	}
}
