package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"sync"
	"time"

	"space-rocks/internal/config"
	"space-rocks/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality
var (
	// Game engine metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in game tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "frame_render_duration_seconds",
		Help:    "Time spent rasterizing and encoding a PNG frame",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1},
	})

	asteroidCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_asteroid_count",
		Help: "Asteroids currently in play",
	})

	bulletCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_bullet_count",
		Help: "Ship and saucer bullets currently in flight",
	})

	explosionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_explosion_count",
		Help: "Active explosions",
	})

	livesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_lives",
		Help: "Remaining lives",
	})

	scoreGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_score",
		Help: "Current score",
	})

	modeGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "game_mode",
		Help: "1 for the active game mode",
	}, []string{"mode"}) // Bounded: the four modes

	droppedDraws = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_dropped_draws_total",
		Help: "Draw calls discarded by the per-frame caps",
	})

	gameEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_events_total",
		Help: "Gameplay events by type",
	}, []string{"type"}) // Bounded: EventType names

	// Event log metrics
	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"})

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

var modes = []game.Mode{game.ModeIntro, game.ModePlaying, game.ModeGameOver, game.ModeHighScoreEntry}

// StartDebugServer starts the internal observability server
// CRITICAL: This MUST bind to localhost only to prevent pprof-based DoS
func StartDebugServer(cfg config.DebugConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if !isLocalAddr(cfg.ListenAddr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Println("⚠️ Debug server forced to localhost for security")
		cfg.ListenAddr = "127.0.0.1:6060"
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, DebugHandler(cfg)); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

// DebugHandler serves pprof, Prometheus metrics and a health check.
func DebugHandler(cfg config.DebugConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

func isLocalAddr(addr string) bool {
	for _, prefix := range []string{"127.0.0.1:", "localhost:", "[::1]:"} {
		if len(addr) > len(prefix) && addr[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records latency and status per route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}

// ObserveTick records one engine tick. Wire it as the engine's tick callback.
func ObserveTick(stats game.TickStats) {
	tickDuration.Observe(stats.Duration.Seconds())
	asteroidCount.Set(float64(stats.Asteroids))
	bulletCount.Set(float64(stats.Bullets))
	explosionCount.Set(float64(stats.Explosions))
	livesGauge.Set(float64(stats.Lives))
	scoreGauge.Set(float64(stats.Score))
	for _, m := range modes {
		v := 0.0
		if m == stats.Mode {
			v = 1
		}
		modeGauge.WithLabelValues(m.String()).Set(v)
	}
	if stats.Dropped > 0 {
		droppedDraws.Add(float64(stats.Dropped))
	}
}

// ObserveEvent counts a gameplay event. Wire it as the engine's event callback.
func ObserveEvent(ev game.Event) {
	gameEvents.WithLabelValues(ev.Type.String()).Inc()
}

// RecordRender records render timing for metrics
func RecordRender(duration time.Duration) {
	renderDuration.Observe(duration.Seconds())
}

// eventLogSeen holds the last totals exported, since counters only go up.
var eventLogSeen struct {
	sync.Mutex
	total, dropped uint64
}

// UpdateEventLogStats exports event log totals as counter deltas.
// Call it periodically with the log's cumulative counts.
func UpdateEventLogStats(total, dropped uint64) {
	eventLogSeen.Lock()
	defer eventLogSeen.Unlock()
	if total > eventLogSeen.total {
		eventLogTotal.Add(float64(total - eventLogSeen.total))
		eventLogSeen.total = total
	}
	if dropped > eventLogSeen.dropped {
		eventLogDropped.Add(float64(dropped - eventLogSeen.dropped))
		eventLogSeen.dropped = dropped
	}
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "invalid", "ws_total_limit",
// "ws_ip_limit", "ws_message_rate"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
