package keycodec

import (
	"fmt"
	"unicode/utf8"
)

// maxComponentLen is the largest component the one-byte length prefix
// can describe. Longer components are an encoding failure, never
// truncated.
const maxComponentLen = 255

// LengthCodec encodes keys as
//
//	full key: len(row) row len(column) column inverted-ts(8, big-endian)
//	prefix:   len(row) row [len(column) column]
//
// Explicit lengths make prefixes unambiguous without a trailing
// delimiter, and components may contain any byte, including zero.
type LengthCodec struct{}

func (LengthCodec) Name() string { return VariantLength }

func (c LengthCodec) EncodeKey(row, column string, tsMillis uint64) ([]byte, error) {
	buf, err := c.ColumnPrefix(row, column)
	if err != nil {
		return nil, err
	}
	return appendTimestamp(buf, tsMillis), nil
}

func (c LengthCodec) RowPrefix(row string) ([]byte, error) {
	return appendLengthComponent(make([]byte, 0, len(row)+1), "row key", row)
}

func (c LengthCodec) ColumnPrefix(row, column string) ([]byte, error) {
	buf := make([]byte, 0, len(row)+len(column)+2+timestampSize)
	buf, err := appendLengthComponent(buf, "row key", row)
	if err != nil {
		return nil, err
	}
	return appendLengthComponent(buf, "column name", column)
}

func (c LengthCodec) DecodeKey(b []byte) (Key, error) {
	row, rest, err := readLengthComponent(b, "row key")
	if err != nil {
		return Key{}, err
	}
	column, rest, err := readLengthComponent(rest, "column name")
	if err != nil {
		return Key{}, err
	}
	ts, err := decodeTimestamp(rest)
	if err != nil {
		return Key{}, err
	}
	return Key{Row: row, Column: column, TimestampMs: ts}, nil
}

func appendLengthComponent(dst []byte, what, s string) ([]byte, error) {
	if len(s) > maxComponentLen {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrComponentTooLong, what, len(s), maxComponentLen)
	}
	dst = append(dst, byte(len(s)))
	return append(dst, s...), nil
}

func readLengthComponent(b []byte, what string) (string, []byte, error) {
	if len(b) == 0 {
		return "", nil, fmt.Errorf("%w: no length byte for %s", ErrMalformedKey, what)
	}
	n := int(b[0])
	if len(b)-1 < n {
		return "", nil, fmt.Errorf("%w: %s declares %d bytes, %d remain", ErrMalformedKey, what, n, len(b)-1)
	}
	part := b[1 : 1+n]
	if !utf8.Valid(part) {
		return "", nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrMalformedKey, what)
	}
	return string(part), b[1+n:], nil
}
