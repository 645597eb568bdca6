package protocol

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrUnsupportedVersion = errors.New("protocol: unsupported version")
	ErrUnknownKind        = errors.New("protocol: unknown kind")
	ErrEmptyPayload       = errors.New("protocol: empty payload")
)

// Encode builds an envelope for kind and marshals it. A nil payload encodes
// as msgpack nil, used by the kinds that carry none.
func Encode(kind Kind, payload any) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("encode %v: %w", kind, ErrUnknownKind)
	}
	env := Envelope{Version: Version, Kind: kind}
	if payload != nil {
		pb, err := msgpack.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %v payload: %w", kind, err)
		}
		env.Payload = pb
	}
	return msgpack.Marshal(&env)
}

// MustEncode is Encode for payloads that cannot fail to marshal.
func MustEncode(kind Kind, payload any) []byte {
	b, err := Encode(kind, payload)
	if err != nil {
		panic(err)
	}
	return b
}

// DecodeEnvelope unmarshals one envelope and checks its version and kind.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode envelope: %w", ErrEmptyPayload)
	}
	var env Envelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version != Version {
		return Envelope{}, fmt.Errorf("decode envelope v%d: %w", env.Version, ErrUnsupportedVersion)
	}
	if !env.Kind.Valid() {
		return Envelope{}, fmt.Errorf("decode envelope %v: %w", env.Kind, ErrUnknownKind)
	}
	return env, nil
}

// DecodePayload unmarshals the envelope's payload into a T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if !env.HasPayload() {
		return out, fmt.Errorf("decode %v: %w", env.Kind, ErrEmptyPayload)
	}
	if err := msgpack.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("decode %v: %w", env.Kind, err)
	}
	return out, nil
}
