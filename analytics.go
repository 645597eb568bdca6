package main

import (
	"database/sql"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event types recorded in the event log.
const (
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
	EvtPlayerJoin   = "player_join"
	EvtEliminated   = "player_eliminated"
	EvtVictory      = "victory"
)

const (
	analyticsQueueSize = 1024
	analyticsBatchSize = 50
	analyticsFlushIdle = 5 * time.Second
)

// AnalyticsEvent is one row of the event log.
type AnalyticsEvent struct {
	Type      string
	PlayerID  int
	SessionID string
	Tick      uint64
	Data      string
	Timestamp time.Time
}

// Analytics records events with batched background writes. A nil DB turns
// Track into a no-op.
type Analytics struct {
	db      *DB
	events  chan AnalyticsEvent
	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
	dropped atomic.Int64
}

func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, analyticsQueueSize),
		stop:   make(chan struct{}),
	}
	if db != nil {
		a.wg.Add(1)
		go a.writer()
	}
	return a
}

// Track enqueues an event without blocking. Events are dropped when the
// queue is full.
func (a *Analytics) Track(evt AnalyticsEvent) {
	if a == nil || a.db == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	select {
	case <-a.stop:
		return
	default:
	}
	select {
	case a.events <- evt:
	default:
		a.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded on a full queue.
func (a *Analytics) Dropped() int64 {
	return a.dropped.Load()
}

// Stop flushes queued events and waits for the writer to exit.
func (a *Analytics) Stop() {
	a.stopped.Do(func() { close(a.stop) })
	a.wg.Wait()
}

func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, analyticsBatchSize)
	ticker := time.NewTicker(analyticsFlushIdle)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= analyticsBatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

func (a *Analytics) flush(events []AnalyticsEvent) {
	if len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.WithError(err).Error("analytics: begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (event_type, player_id, session_id, tick, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.WithError(err).Error("analytics: prepare")
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullInt64{Int64: int64(evt.PlayerID), Valid: evt.PlayerID > 0}
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, pid, sid, int64(evt.Tick), data, evt.Timestamp.Format(time.RFC3339Nano)); err != nil {
			log.WithError(err).WithField("event", evt.Type).Error("analytics: insert")
		}
	}
	if err := tx.Commit(); err != nil {
		log.WithError(err).Error("analytics: commit")
	}
}

// eventData encodes small metadata maps for the data column.
func eventData(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(b)
}
