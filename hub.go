package main

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"arena-server/game"
)

// HubConfig carries the tick cadence and connection limits.
type HubConfig struct {
	TickRate      int
	MaxConns      int
	MaxConnsPerIP int
}

// Hub is the session registry. It owns no game data: every mutation goes
// through the engine, and the hub only fans out the resulting snapshots.
type Hub struct {
	engine    *game.Engine
	analytics *Analytics
	tickRate  int
	started   time.Time

	mu      sync.RWMutex
	clients map[*Client]bool

	// Player ids are never reused within a process.
	nextID atomic.Int64

	// Connection limiting, checked before a transport is handed over
	connMu        sync.Mutex
	ipConns       map[string]int
	totalConns    int
	maxConns      int
	maxConnsPerIP int

	// Serializes snapshot and fan-out so every client sees ticks in order.
	bcastMu   sync.Mutex
	winner    int
	hasWinner bool
}

func NewHub(engine *game.Engine, cfg HubConfig, analytics *Analytics) *Hub {
	if cfg.TickRate <= 0 {
		cfg.TickRate = game.TickRate
	}
	return &Hub{
		engine:        engine,
		analytics:     analytics,
		tickRate:      cfg.TickRate,
		started:       time.Now(),
		clients:       make(map[*Client]bool),
		ipConns:       make(map[string]int),
		maxConns:      cfg.MaxConns,
		maxConnsPerIP: cfg.MaxConnsPerIP,
	}
}

// admit reserves a connection slot for ip, or reports false when a limit
// is reached.
func (h *Hub) admit(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.maxConns > 0 && h.totalConns >= h.maxConns {
		return false
	}
	if h.maxConnsPerIP > 0 && h.ipConns[ip] >= h.maxConnsPerIP {
		return false
	}
	h.ipConns[ip]++
	h.totalConns++
	return true
}

func (h *Hub) release(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Serve registers an admitted transport as a new session and starts its
// reader and writer.
func (h *Hub) Serve(t Transport, ip string) *Client {
	c := newClient(h, t, int(h.nextID.Add(1)), ip)

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	c.log.Info("session opened")
	h.analytics.Track(AnalyticsEvent{Type: EvtSessionStart, PlayerID: c.id, SessionID: c.sessionID})

	go c.WritePump()
	go c.ReadPump()
	return c
}

// unregister tears a session down, removes its player and broadcasts the
// departure without waiting for the next tick.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	h.release(c.remoteAddr)
	h.engine.RemovePlayer(c.id)

	c.log.WithField("acks", c.acks.Load()).Info("session closed")
	h.analytics.Track(AnalyticsEvent{Type: EvtSessionEnd, PlayerID: c.id, SessionID: c.sessionID})

	h.broadcast()
}

// ServeTCP accepts stream connections until ln is closed.
func (h *Hub) ServeTCP(ln net.Listener) error {
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
			log.WithError(err).WithField("retry_in", backoff).Warn("accept failed")
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		ip := hostOnly(conn.RemoteAddr().String())
		if !h.admit(ip) {
			log.WithField("remote", ip).Warn("connection limit reached, rejecting")
			conn.Close()
			continue
		}
		h.Serve(newTCPConn(conn), ip)
	}
}

// Run drives the simulation at the configured rate until ctx is done. Each
// iteration sleeps whatever is left of the tick budget.
func (h *Hub) Run(ctx context.Context) {
	budget := time.Second / time.Duration(h.tickRate)
	timer := time.NewTimer(budget)
	defer timer.Stop()

	log.WithField("rate", h.tickRate).Info("tick loop started")
	for {
		start := time.Now()
		h.step()
		timer.Reset(max(budget-time.Since(start), 0))

		select {
		case <-ctx.Done():
			log.Info("tick loop stopped")
			return
		case <-timer.C:
		}
	}
}

// step advances one tick and broadcasts its result.
func (h *Hub) step() {
	h.engine.Tick()
	for _, ev := range h.engine.TakeEvents() {
		if ev.Kind != game.EventEliminated {
			continue
		}
		log.WithFields(log.Fields{
			"player":  ev.Victim,
			"shooter": ev.Shooter,
			"tick":    ev.Tick,
		}).Info("player eliminated")
		h.analytics.Track(AnalyticsEvent{
			Type:     EvtEliminated,
			PlayerID: ev.Victim,
			Tick:     ev.Tick,
			Data:     eventData(map[string]any{"shooter": ev.Shooter}),
		})
	}
	h.broadcast()
}

// broadcast snapshots the engine, encodes once and queues the bytes for
// every registered session.
func (h *Hub) broadcast() game.Snapshot {
	h.bcastMu.Lock()
	defer h.bcastMu.Unlock()

	snap := h.engine.Snapshot()
	h.noteWinner(snap)

	data, err := encodeSnapshot(snap)
	if err != nil {
		log.WithError(err).Error("encode state")
		return snap
	}

	h.mu.RLock()
	for c := range h.clients {
		c.SendRaw(data)
	}
	h.mu.RUnlock()
	return snap
}

// noteWinner logs a win once, when the snapshot first shows it.
func (h *Hub) noteWinner(snap game.Snapshot) {
	if !snap.HasWinner {
		h.hasWinner = false
		return
	}
	if h.hasWinner && h.winner == snap.WinnerID {
		return
	}
	h.winner, h.hasWinner = snap.WinnerID, true
	log.WithFields(log.Fields{
		"player":       snap.WinnerID,
		"tick":         snap.Tick,
		"eliminations": snap.Eliminations,
	}).Info("last player standing")
	h.analytics.Track(AnalyticsEvent{
		Type:     EvtVictory,
		PlayerID: snap.WinnerID,
		Tick:     snap.Tick,
		Data:     eventData(map[string]any{"eliminations": snap.Eliminations}),
	})
}

// Close drops every session. Readers observe the closed transports and
// unregister themselves.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

// ClientCount returns the number of registered sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count.
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
