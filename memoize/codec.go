package memoize

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes memoized results into the bytes a Backend stores. The
// default is msgpack; JSONCodec is provided for backends whose payloads
// should stay human-readable on disk.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// NewDefaultCodec returns the msgpack codec used when no codec option is
// supplied.
func NewDefaultCodec() Codec { return msgpackCodec{} }

// JSONCodec stores results as JSON. Pair it with a file backend when the
// cached payloads should be readable and diffable on disk.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
