package app

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/frudas24/deskpointer/internal/session"
	"github.com/frudas24/deskpointer/internal/web"
)

// RegisterRoutes wires the websocket, API and static handlers onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/ws", a.supervisor)
	if a.signaling != nil {
		mux.Handle("/ws/signal", a.signaling)
	}
	mux.HandleFunc("/api/sessions", a.handleSessions)
	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/favicon.ico", handleFavicon)
	mux.Handle("/", web.Handler(a.cfg.StaticDir, a.log.With().Str("component", "web").Logger()))
}

// Handler returns a mux with every route registered.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	return mux
}

type sessionsResponse struct {
	Sessions []session.Info `json:"sessions"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	WebRTC   bool   `json:"webrtc"`
	Uptime   string `json:"uptime"`
}

// handleSessions lists live sessions.
func (a *App) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, sessionsResponse{Sessions: a.supervisor.Sessions()})
}

// handleHealth reports liveness.
func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, healthResponse{
		Status:   "ok",
		Sessions: len(a.supervisor.Sessions()),
		WebRTC:   a.signaling != nil,
		Uptime:   time.Since(a.started).Truncate(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
