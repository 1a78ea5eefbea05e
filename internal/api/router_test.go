package api_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"space-rocks/internal/api"
	"space-rocks/internal/game"
	"space-rocks/internal/highscore"
	"space-rocks/internal/input"
	"space-rocks/internal/render"

	"github.com/gorilla/websocket"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// MockEngine implements api.EngineInterface for testing
type MockEngine struct {
	mu       sync.Mutex
	snap     game.GameSnapshot
	scores   []highscore.Entry
	controls *input.Controls
}

func NewMockEngine() *MockEngine {
	return &MockEngine{
		snap: game.GameSnapshot{
			Sequence: 1,
			Width:    640,
			Height:   480,
			Mode:     "intro",
			Sprites: []game.Sprite{
				{Kind: game.KindAsteroid, X: 100, Y: 100, RX: 40, RY: 40},
			},
			AsteroidCount: 1,
		},
		scores:   []highscore.Entry{{Name: "ACE", Score: 9000}, {Name: "BOB", Score: 500}},
		controls: input.NewControls(),
	}
}

func (m *MockEngine) GetSnapshot() *game.GameSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

func (m *MockEngine) HighScores() []highscore.Entry { return m.scores }

func (m *MockEngine) Controls() *input.Controls { return m.controls }

func (m *MockEngine) GetEventLogStats() map[string]interface{} {
	return map[string]interface{}{"total": uint64(0), "dropped": uint64(0)}
}

func newTestRouter(m *MockEngine) *httptest.Server {
	return httptest.NewServer(api.NewRouter(api.RouterConfig{
		Engine:         m,
		Frames:         render.NewCanvas(320, 240, 640, 480),
		DisableLogging: true, // Quiet logs in tests
		RateLimitConfig: &api.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   time.Hour,
		},
	}))
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

// ============================================================================
// API Endpoint Tests
// ============================================================================

func TestAPIGetState(t *testing.T) {
	ts := newTestRouter(NewMockEngine())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var snap game.GameSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if snap.Mode != "intro" || len(snap.Sprites) != 1 || snap.Sprites[0].Kind != game.KindAsteroid {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestAPIGetStats(t *testing.T) {
	ts := newTestRouter(NewMockEngine())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var stats map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats["asteroidCount"] != float64(1) {
		t.Errorf("asteroidCount = %v, want 1", stats["asteroidCount"])
	}
	if _, ok := stats["eventLog"]; !ok {
		t.Error("stats should include eventLog")
	}
	rl, ok := stats["rateLimit"].(map[string]interface{})
	if !ok {
		t.Fatalf("stats should include rateLimit, got %v", stats["rateLimit"])
	}
	if rl["allowed"] != float64(1) || rl["tracked"] != float64(1) {
		t.Errorf("rateLimit = %v, want allowed 1 tracked 1", rl)
	}
	if _, ok := stats["websocket"]; ok {
		t.Error("websocket stats should be absent without a hub")
	}
}

func TestAPIHighScores(t *testing.T) {
	ts := newTestRouter(NewMockEngine())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/highscores")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var entries []highscore.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "ACE" {
		t.Errorf("unexpected table: %+v", entries)
	}
}

func TestAPIFramePNG(t *testing.T) {
	ts := newTestRouter(NewMockEngine())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/frame.png")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Content-Type = %q, want image/png", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 320 {
		t.Errorf("width = %d, want 320", img.Bounds().Dx())
	}
}

func TestAPIFrameDisabled(t *testing.T) {
	ts := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Engine:         NewMockEngine(),
		DisableLogging: true,
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/frame.png")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}
}

func TestAPIInputHoldsControl(t *testing.T) {
	m := NewMockEngine()
	ts := newTestRouter(m)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/input", map[string]interface{}{"control": "thrust", "down": true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !m.controls.Thrust() {
		t.Error("thrust should be held")
	}

	resp = postJSON(t, ts.URL+"/api/input", map[string]interface{}{"control": "thrust", "down": false})
	resp.Body.Close()
	if m.controls.Thrust() {
		t.Error("thrust should be released")
	}
}

func TestAPIPressIsConsumedOnce(t *testing.T) {
	m := NewMockEngine()
	ts := newTestRouter(m)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/press", map[string]string{"event": "start"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !m.controls.StartPressed() {
		t.Fatal("start press should be latched")
	}
	if m.controls.StartPressed() {
		t.Error("start press should be consumed by the first read")
	}
}

func TestAPIInputValidation(t *testing.T) {
	ts := newTestRouter(NewMockEngine())
	defer ts.Close()

	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/api/input", "{"},
		{"unknown control", "/api/input", `{"control":"warp","down":true}`},
		{"unknown press", "/api/press", `{"event":"coin"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+tt.path, "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestAPIInputRejectsOversizedBody(t *testing.T) {
	m := NewMockEngine()
	ts := newTestRouter(m)
	defer ts.Close()

	body := `{"control":"fire","down":true,"pad":"` + strings.Repeat("x", 4096) + `"}`
	for _, path := range []string{"/api/input", "/api/press"} {
		resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
	if m.controls.Fire() {
		t.Error("oversized request should not hold fire")
	}
}

// ============================================================================
// Middleware Tests
// ============================================================================

func TestAPICORSHeaders(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{
		Engine:         NewMockEngine(),
		DisableLogging: true,
		CORSOrigins:    []string{"http://test.example.com"},
	})

	ts := httptest.NewServer(router)
	defer ts.Close()

	req, _ := http.NewRequest("GET", ts.URL+"/api/state", nil)
	req.Header.Set("Origin", "http://test.example.com")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://test.example.com" {
		t.Errorf("Expected Access-Control-Allow-Origin 'http://test.example.com', got '%s'", got)
	}
}

func TestAPIRateLimiting(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{
		Engine: NewMockEngine(),
		RateLimitConfig: &api.RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
			CleanupInterval:   time.Hour,
		},
		DisableLogging: true,
	})

	ts := httptest.NewServer(router)
	defer ts.Close()

	var gotRateLimited bool
	for i := 0; i < 10; i++ {
		resp, err := http.Get(ts.URL + "/api/state")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			gotRateLimited = true
			break
		}
	}

	if !gotRateLimited {
		t.Error("Expected to be rate limited after burst exceeded")
	}
}

func TestAPIRedirects(t *testing.T) {
	ts := newTestRouter(NewMockEngine())
	defer ts.Close()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Errorf("Expected 302 redirect, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/admin/" {
		t.Errorf("Expected redirect to /admin/, got %s", location)
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	extra := []string{"https://*.example.com", "https://play.test"}
	tests := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://localhost", true},
		{"http://localhost:5173", true},
		{"http://localhost.evil.com", false},
		{"https://arcade.example.com", true},
		{"https://example.com.evil", false},
		{"https://play.test", true},
		{"https://other.test", false},
	}
	for _, tt := range tests {
		if got := api.IsAllowedOrigin(tt.origin, extra); got != tt.want {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

// ============================================================================
// WebSocket Tests
// ============================================================================

func dialHub(t *testing.T, m *MockEngine) (*api.WebSocketHub, *websocket.Conn, func()) {
	t.Helper()
	hub := api.NewWebSocketHub(m.controls, nil)
	go hub.Run()
	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	header := http.Header{"Origin": []string{"http://localhost"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		ts.Close()
		hub.Stop()
		t.Fatalf("dial: %v", err)
	}
	return hub, conn, func() {
		conn.Close()
		hub.Stop()
		ts.Close()
	}
}

func TestWebSocketControlMessages(t *testing.T) {
	m := NewMockEngine()
	_, conn, cleanup := dialHub(t, m)
	defer cleanup()

	if err := conn.WriteJSON(map[string]interface{}{"type": "hold", "control": "left", "down": true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(map[string]interface{}{"type": "press", "event": "hyperspace"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !m.controls.RotateLeft() {
		if time.Now().After(deadline) {
			t.Fatal("hold message was not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}
	for !m.controls.HyperspacePressed() {
		if time.Now().After(deadline) {
			t.Fatal("press message was not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketBroadcastsState(t *testing.T) {
	m := NewMockEngine()
	hub, conn, cleanup := dialHub(t, m)
	defer cleanup()

	hub.StartBroadcastLoop(m, 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Event string            `json:"event"`
		Data  game.GameSnapshot `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Event != "game:state" {
		t.Errorf("event = %q, want game:state", msg.Event)
	}
	if msg.Data.AsteroidCount != 1 {
		t.Errorf("asteroidCount = %d, want 1", msg.Data.AsteroidCount)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	hub := api.NewWebSocketHub(input.NewControls(), nil)
	go hub.Run()
	defer hub.Stop()
	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("expected the upgrade to be refused")
	}
}

func TestWebSocketDisconnectReleasesHeldControls(t *testing.T) {
	m := NewMockEngine()
	hub, conn, cleanup := dialHub(t, m)
	defer cleanup()

	if err := conn.WriteJSON(map[string]interface{}{"type": "hold", "control": "fire", "down": true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(map[string]interface{}{"type": "hold", "control": "thrust", "down": true}); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !m.controls.Fire() || !m.controls.Thrust() {
		if time.Now().After(deadline) {
			t.Fatal("hold messages were not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if m.controls.Fire() {
		t.Error("fire should be released when its client disconnects")
	}
	if m.controls.Thrust() {
		t.Error("thrust should be released when its client disconnects")
	}
}

func TestWebSocketDisconnectKeepsReleasedControls(t *testing.T) {
	m := NewMockEngine()
	hub, conn, cleanup := dialHub(t, m)
	defer cleanup()

	// Messages on one connection apply in order, so seeing "right" held
	// means the left press and release have both landed.
	for _, msg := range []map[string]interface{}{
		{"type": "hold", "control": "left", "down": true},
		{"type": "hold", "control": "left", "down": false},
		{"type": "hold", "control": "right", "down": true},
	} {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for !m.controls.RotateRight() {
		if time.Now().After(deadline) {
			t.Fatal("hold messages were not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Another source holds left after this client let go.
	m.controls.Set(input.RotateLeft, true)

	conn.Close()
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !m.controls.RotateLeft() {
		t.Error("a control the client had released should not be touched on disconnect")
	}
	if m.controls.RotateRight() {
		t.Error("right should be released with its client")
	}
}

func TestAPIStatsIncludesHub(t *testing.T) {
	m := NewMockEngine()
	hub, _, cleanup := dialHub(t, m)
	defer cleanup()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ts := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Engine:         m,
		Hub:            hub,
		DisableLogging: true,
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var stats struct {
		Websocket api.HubStats `json:"websocket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.Websocket.Clients != 1 {
		t.Errorf("clients = %d, want 1", stats.Websocket.Clients)
	}
	if stats.Websocket.Connections.Allowed != 1 || stats.Websocket.Connections.Tracked != 1 {
		t.Errorf("connections = %+v, want allowed 1 tracked 1", stats.Websocket.Connections)
	}
}
