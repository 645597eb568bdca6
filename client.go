package main

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"arena-server/protocol"
)

const (
	writeWait   = 10 * time.Second
	sendBufSize = 256
)

var errLeave = errors.New("client left")

// Client is one session: a transport, its assigned player id and a bounded
// outbound queue drained by WritePump.
type Client struct {
	hub        *Hub
	conn       Transport
	send       chan []byte
	id         int
	sessionID  string
	remoteAddr string
	joined     bool // reader goroutine only
	acks       atomic.Int64
	dropped    atomic.Int64
	log        *log.Entry
}

func newClient(hub *Hub, conn Transport, id int, remoteAddr string) *Client {
	sid := uuid.NewString()
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		id:         id,
		sessionID:  sid,
		remoteAddr: remoteAddr,
		log: log.WithFields(log.Fields{
			"session": sid,
			"player":  id,
			"remote":  remoteAddr,
		}),
	}
}

// ReadPump decodes inbound envelopes into engine calls until the transport
// fails, a malformed envelope arrives or the client leaves.
func (c *Client) ReadPump() {
	defer func() {
		c.conn.Close()
		c.hub.unregister(c)
	}()

	for {
		raw, err := c.conn.ReadMessage()
		if err != nil {
			if isExpectedClose(err) {
				c.log.Debug("connection closed")
			} else {
				c.log.WithError(err).Warn("read failed")
			}
			return
		}

		env, err := protocol.DecodeEnvelope(raw)
		if err != nil {
			c.log.WithError(err).Warn("malformed envelope")
			return
		}
		if err := c.handle(env); err != nil {
			if errors.Is(err, errLeave) {
				c.log.Info("client left")
			} else {
				c.log.WithError(err).WithField("kind", env.Kind).Warn("bad message")
			}
			return
		}
	}
}

func (c *Client) handle(env protocol.Envelope) error {
	engine := c.hub.engine
	switch env.Kind {
	case protocol.PlayerJoin:
		c.SendRaw(encodeIDAssign(c.id))
		if c.joined {
			return nil
		}
		engine.AddPlayer(c.id)
		c.joined = true
		c.log.Info("player joined")
		c.hub.analytics.Track(AnalyticsEvent{Type: EvtPlayerJoin, PlayerID: c.id, SessionID: c.sessionID})
		c.hub.broadcast()
	case protocol.PlayerInput:
		in, err := protocol.DecodePayload[protocol.Input](env)
		if err != nil {
			return err
		}
		engine.SetInput(c.id, toInput(in))
	case protocol.PlayerShoot:
		engine.Shoot(c.id)
	case protocol.StateAck:
		c.acks.Add(1)
	case protocol.PlayerLeave:
		return errLeave
	default:
		c.log.WithField("kind", env.Kind).Debug("ignoring server-bound kind")
	}
	return nil
}

// WritePump drains the send queue. A write error closes the transport,
// which ends the reader and tears the session down.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(msg); err != nil {
			c.log.WithError(err).Debug("write failed")
			return
		}
	}
}

// SendRaw queues pre-encoded bytes. Messages for a client whose queue is
// full are dropped. Callers must not send after unregister.
func (c *Client) SendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
		if c.dropped.Add(1) == 1 {
			c.log.Warn("client too slow, dropping messages")
		}
	}
}

func isExpectedClose(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
