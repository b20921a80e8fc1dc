package keycodec

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// keySeparator delimits string components. Components must not
// contain it, otherwise the key would decode to a different address.
const keySeparator = byte(0x00)

// SeparatorCodec encodes keys as
//
//	full key: row 0x00 column 0x00 inverted-ts(8, big-endian)
//	prefix:   row 0x00 [column 0x00]
//
// The trailing separator on prefixes keeps a prefix for column "col"
// from matching stored keys of column "colour".
type SeparatorCodec struct{}

func (SeparatorCodec) Name() string { return VariantSeparator }

func (c SeparatorCodec) EncodeKey(row, column string, tsMillis uint64) ([]byte, error) {
	buf, err := c.ColumnPrefix(row, column)
	if err != nil {
		return nil, err
	}
	return appendTimestamp(buf, tsMillis), nil
}

func (c SeparatorCodec) RowPrefix(row string) ([]byte, error) {
	if err := checkSeparatorComponent("row key", row); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(row)+1)
	buf = append(buf, row...)
	return append(buf, keySeparator), nil
}

func (c SeparatorCodec) ColumnPrefix(row, column string) ([]byte, error) {
	if err := checkSeparatorComponent("row key", row); err != nil {
		return nil, err
	}
	if err := checkSeparatorComponent("column name", column); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(row)+len(column)+2+timestampSize)
	buf = append(buf, row...)
	buf = append(buf, keySeparator)
	buf = append(buf, column...)
	return append(buf, keySeparator), nil
}

func (c SeparatorCodec) DecodeKey(b []byte) (Key, error) {
	rowEnd := bytes.IndexByte(b, keySeparator)
	if rowEnd < 0 {
		return Key{}, fmt.Errorf("%w: no separator after row key", ErrMalformedKey)
	}
	rest := b[rowEnd+1:]
	colEnd := bytes.IndexByte(rest, keySeparator)
	if colEnd < 0 {
		return Key{}, fmt.Errorf("%w: no separator after column name", ErrMalformedKey)
	}
	// The timestamp field is raw binary and may itself contain zero
	// bytes, so everything past the second separator is the
	// timestamp, never split further.
	ts, err := decodeTimestamp(rest[colEnd+1:])
	if err != nil {
		return Key{}, err
	}
	row, column := b[:rowEnd], rest[:colEnd]
	if !utf8.Valid(row) || !utf8.Valid(column) {
		return Key{}, fmt.Errorf("%w: component is not valid UTF-8", ErrMalformedKey)
	}
	return Key{Row: string(row), Column: string(column), TimestampMs: ts}, nil
}

// checkSeparatorComponent rejects components the separator format
// cannot represent unambiguously. Empty strings are valid components.
func checkSeparatorComponent(what, s string) error {
	if strings.IndexByte(s, keySeparator) >= 0 {
		return fmt.Errorf("%w: %s contains the separator byte", ErrInvalidComponent, what)
	}
	return nil
}
