package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"space-rocks/internal/input"
)

// maxInputBody caps the JSON body of the input endpoints.
const maxInputBody = 1 << 10

// routerHandlers holds the dependencies of the HTTP handlers.
type routerHandlers struct {
	engine  EngineInterface
	limiter *IPRateLimiter
	hub     *WebSocketHub // nil when the router is served without /ws

	framesMu sync.Mutex // FrameRenderer implementations are single-threaded
	frames   FrameRenderer
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	stats := map[string]interface{}{
		"tick":          snap.TickNumber,
		"mode":          snap.Mode,
		"score":         snap.Score,
		"highScore":     snap.HighScore,
		"lives":         snap.Lives,
		"asteroidCount": snap.AsteroidCount,
		"bulletCount":   snap.BulletCount,
		"shipAlive":     snap.ShipAlive,
		"saucerAlive":   snap.SaucerAlive,
		"dropped":       snap.Dropped,
		"eventLog":      h.engine.GetEventLogStats(),
		"rateLimit":     h.limiter.Stats(),
	}
	if h.hub != nil {
		stats["websocket"] = h.hub.Stats()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetHighScores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.HighScores())
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.frames == nil {
		writeError(w, "Frame rendering disabled", http.StatusServiceUnavailable)
		return
	}
	snap := h.engine.GetSnapshot()

	h.framesMu.Lock()
	defer h.framesMu.Unlock()

	start := time.Now()
	h.frames.RenderSnapshot(snap)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.frames.EncodePNG(w); err != nil {
		writeError(w, "Failed to encode frame", http.StatusInternalServerError)
		return
	}
	RecordRender(time.Since(start))
}

// inputRequest holds or releases a control.
type inputRequest struct {
	Control string `json:"control"`
	Down    bool   `json:"down"`
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	ctl, ok := input.ParseControl(req.Control)
	if !ok {
		writeError(w, "Unknown control", http.StatusBadRequest)
		return
	}
	h.engine.Controls().Set(ctl, req.Down)
	writeJSON(w, map[string]interface{}{"control": ctl.String(), "down": req.Down})
}

// pressRequest latches a one-shot press until the next tick reads it.
type pressRequest struct {
	Event string `json:"event"`
}

func (h *routerHandlers) handlePress(w http.ResponseWriter, r *http.Request) {
	var req pressRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	p, ok := input.ParsePress(req.Event)
	if !ok {
		writeError(w, "Unknown event", http.StatusBadRequest)
		return
	}
	h.engine.Controls().Press(p)
	writeJSON(w, map[string]interface{}{"event": p.String(), "success": true})
}

// Helper functions (package-level for reuse)

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInputBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
