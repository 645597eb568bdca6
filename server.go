package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"arena-server/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// SetupRoutes configures the HTTP side: websocket sessions and a health probe.
func SetupRoutes(hub *Hub) *way.Router {
	router := way.NewRouter()
	router.HandleFunc("GET", "/ws", hub.handleWS)
	router.HandleFunc("GET", "/healthz", hub.handleHealth)
	return router
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := hostOnly(r.RemoteAddr)
	if !h.admit(ip) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.release(ip)
		log.WithError(err).WithField("remote", ip).Warn("websocket upgrade")
		return
	}
	h.Serve(newWSConn(conn), ip)
}

type healthResponse struct {
	Status          string  `json:"status"`
	ProtocolVersion uint8   `json:"protocol_version"`
	Sessions        int     `json:"sessions"`
	Players         int     `json:"players"`
	Alive           int     `json:"alive"`
	Tick            uint64  `json:"tick"`
	Winner          int     `json:"winner,omitempty"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	resp := healthResponse{
		Status:          "ok",
		ProtocolVersion: protocol.Version,
		Sessions:        h.ClientCount(),
		Players:         len(snap.Players),
		Alive:           snap.Living(),
		Tick:            snap.Tick,
		UptimeSeconds:   time.Since(h.started).Seconds(),
	}
	if snap.HasWinner {
		resp.Winner = snap.WinnerID
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.WithError(err).Debug("write health response")
	}
}
