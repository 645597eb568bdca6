package main

import (
	"bufio"
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"arena-server/protocol"
)

// Transport is one bidirectional message stream. ReadMessage is called from
// a single reader goroutine and WriteMessage from a single writer goroutine.
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(msg []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

var errTextFrame = errors.New("text websocket frame")

// tcpConn frames messages with a length prefix on a raw stream socket.
type tcpConn struct {
	conn net.Conn
	r    *bufio.Reader
}

func newTCPConn(c net.Conn) *tcpConn {
	return &tcpConn{conn: c, r: bufio.NewReader(c)}
}

func (t *tcpConn) ReadMessage() ([]byte, error) {
	return protocol.ReadFrame(t.r)
}

func (t *tcpConn) WriteMessage(msg []byte) error {
	return protocol.WriteFrame(t.conn, msg)
}

func (t *tcpConn) SetWriteDeadline(d time.Time) error { return t.conn.SetWriteDeadline(d) }
func (t *tcpConn) Close() error                       { return t.conn.Close() }

// wsConn carries one envelope per binary websocket message.
type wsConn struct {
	conn *websocket.Conn
}

func newWSConn(c *websocket.Conn) *wsConn {
	c.SetReadLimit(protocol.MaxFrameSize)
	return &wsConn{conn: c}
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	mt, msg, err := w.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if mt != websocket.BinaryMessage {
		return nil, errTextFrame
	}
	return msg, nil
}

func (w *wsConn) WriteMessage(msg []byte) error {
	return w.conn.WriteMessage(websocket.BinaryMessage, msg)
}

func (w *wsConn) SetWriteDeadline(d time.Time) error { return w.conn.SetWriteDeadline(d) }
func (w *wsConn) Close() error                       { return w.conn.Close() }
