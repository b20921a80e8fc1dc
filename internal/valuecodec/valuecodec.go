// Package valuecodec converts application values to and from the
// bytes stored in a cell. The row store only depends on the two-method
// contract; which codec is used is a construction-time choice.
package valuecodec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrUnsupportedValue is returned by Serialize when a codec cannot
	// represent the given value. Batch writers skip such items.
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrCorruptValue is returned by Deserialize when stored bytes do
	// not parse. Readers surface it rather than return a wrong value.
	ErrCorruptValue = errors.New("corrupt stored value")
)

// Codec serializes cell values. Serialize failures mean "skip this
// item"; Deserialize failures mean the stored bytes are corrupt for
// this codec and must be reported, never guessed at.
type Codec interface {
	Serialize(v any) ([]byte, error)
	Deserialize(b []byte) (any, error)
	Name() string
}

// ForName returns the codec for a configured name.
func ForName(name string) (Codec, error) {
	switch name {
	case "bytes":
		return Bytes{}, nil
	case "string", "":
		return String{}, nil
	case "json":
		return JSON{}, nil
	case "msgpack":
		return Msgpack{}, nil
	default:
		return nil, fmt.Errorf("unknown value codec: %q", name)
	}
}

// Bytes stores raw byte slices untouched.
type Bytes struct{}

func (Bytes) Name() string { return "bytes" }

func (Bytes) Serialize(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, fmt.Errorf("%w: bytes codec needs []byte or string, got %T", ErrUnsupportedValue, v)
	}
}

func (Bytes) Deserialize(b []byte) (any, error) {
	return b, nil
}

// String stores values as UTF-8 text.
type String struct{}

func (String) Name() string { return "string" }

func (String) Serialize(v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return []byte(s), nil
	case []byte:
		return s, nil
	case fmt.Stringer:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("%w: string codec needs a string, got %T", ErrUnsupportedValue, v)
	}
}

func (String) Deserialize(b []byte) (any, error) {
	return string(b), nil
}

// JSON stores any json-marshalable value.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Serialize(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return b, nil
}

func (JSON) Deserialize(b []byte) (any, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	return v, nil
}

// Msgpack stores values in MessagePack, a compact binary encoding.
type Msgpack struct{}

func (Msgpack) Name() string { return "msgpack" }

func (Msgpack) Serialize(v any) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return b, nil
}

func (Msgpack) Deserialize(b []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	return v, nil
}
