package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Version is the wire schema version carried by every envelope.
const Version uint8 = 1

// Kind identifies the payload schema of an envelope. Values are part of the
// wire format and must not be renumbered.
type Kind uint8

const (
	PlayerJoin     Kind = iota // client -> server, no payload
	PlayerLeave                // declared, never sent by clients
	PlayerInput                // client -> server, Input
	GameStateKind              // server -> client, GameState
	PlayerShoot                // client -> server, no payload
	StateAck                   // client -> server, no payload
	PlayerIDAssign             // server -> client, IDAssign
)

var kindNames = [...]string{
	PlayerJoin:     "PLAYER_JOIN",
	PlayerLeave:    "PLAYER_LEAVE",
	PlayerInput:    "PLAYER_INPUT",
	GameStateKind:  "GAME_STATE",
	PlayerShoot:    "PLAYER_SHOOT",
	StateAck:       "STATE_ACK",
	PlayerIDAssign: "PLAYER_ID_ASSIGN",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is in the catalogue.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// Envelope wraps every message: [version, kind, payload].
type Envelope struct {
	_msgpack struct{} `msgpack:",as_array"`

	Version uint8
	Kind    Kind
	Payload msgpack.RawMessage
}

// HasPayload reports whether the envelope carries a non-nil payload.
func (e Envelope) HasPayload() bool {
	return len(e.Payload) > 0 && !(len(e.Payload) == 1 && e.Payload[0] == msgpackNil)
}

const msgpackNil = 0xc0
