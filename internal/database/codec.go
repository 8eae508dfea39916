package database

import (
	"bytes"

	"github.com/asdine/storm/v3/codec"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/pkg/errors"
	ugorji "github.com/ugorji/go/codec"
)

// Names of the supported storage formats.
const (
	CodecMsgpack = "msgpack"
	CodecCBOR    = "cbor"
)

// Codec returns the storage format registered under the given name.
// An empty name selects msgpack.
func Codec(name string) (codec.MarshalUnmarshaler, error) {
	switch name {
	case "", CodecMsgpack:
		return msgpack.Codec, nil
	case CodecCBOR:
		return CBOR, nil
	}
	return nil, errors.Errorf("unsupported database codec: %s", name)
}

// CBOR encodes to and decodes from Concise Binary Object Representation.
// https://tools.ietf.org/html/rfc7049
var CBOR codec.MarshalUnmarshaler = new(cborCodec)

type cborCodec int

func (c cborCodec) Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := ugorji.NewEncoder(&b, c.handle())
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (c cborCodec) Unmarshal(b []byte, v any) error {
	dec := ugorji.NewDecoderBytes(b, c.handle())
	return dec.Decode(v)
}

func (c cborCodec) Name() string {
	return CodecCBOR
}

func (c cborCodec) handle() *ugorji.CborHandle {
	h := new(ugorji.CborHandle)
	h.TimeRFC3339 = true
	return h
}
