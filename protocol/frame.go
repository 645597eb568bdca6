package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single inbound frame. Clients only send inputs, so
// anything larger is a decode failure.
const MaxFrameSize = 64 << 10

// MaxOutboundFrameSize bounds frames the server writes. Full GAME_STATE
// snapshots grow with the player count and routinely exceed MaxFrameSize.
const MaxOutboundFrameSize = 16 << 20

const frameHeaderSize = 4

var ErrFrameTooLarge = errors.New("protocol: frame too large")

// WriteFrame writes b prefixed with its big-endian uint32 length.
func WriteFrame(w io.Writer, b []byte) error {
	if len(b) > MaxOutboundFrameSize {
		return fmt.Errorf("write frame of %d bytes: %w", len(b), ErrFrameTooLarge)
	}
	buf := make([]byte, frameHeaderSize+len(b))
	binary.BigEndian.PutUint32(buf, uint32(len(b)))
	copy(buf[frameHeaderSize:], b)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one length-prefixed frame. io.EOF is returned unwrapped
// when the stream ends cleanly between frames.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("read frame of %d bytes: %w", n, ErrFrameTooLarge)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}
