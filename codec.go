package pagestore

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Codec serializes values to and from their persisted form. Every page, the
// metadata record, and every object record pass through the store's codec.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// JSONCodec encodes values as JSON. It is the default codec; records it
// writes stay readable with a text editor and standard JSON tooling.
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// YAMLCodec encodes values as YAML.
type YAMLCodec struct{}

func (YAMLCodec) Encode(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

func (YAMLCodec) Decode(data []byte, v interface{}) error {
	return yaml.Unmarshal(data, v)
}

// CBORCodec encodes values as canonical CBOR. Compact binary pages at the
// cost of records no longer being readable with a text editor.
type CBORCodec struct{}

func (CBORCodec) Encode(v interface{}) ([]byte, error) {
	return cbor.Marshal(v)
}

func (CBORCodec) Decode(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}
