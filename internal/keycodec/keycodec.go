// Package keycodec maps the logical cell address (row key, column
// name, timestamp) to and from a single sortable byte string. Byte
// order over encoded keys equals (row asc, column asc, timestamp
// desc), so a forward scan over an ordered store returns the newest
// version of each column first with no comparator logic anywhere.
//
// The dataset never appears in the key bytes; it is represented by
// the partition the key is written to.
package keycodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// VariantSeparator delimits components with a zero byte.
	VariantSeparator = "separator"
	// VariantLength prefixes each component with a one-byte length.
	VariantLength = "length"

	timestampSize = 8
)

var (
	// ErrInvalidComponent is returned when a component cannot be
	// represented in the codec's wire format.
	ErrInvalidComponent = errors.New("invalid key component")
	// ErrComponentTooLong is returned when a component exceeds the
	// format's size limit.
	ErrComponentTooLong = errors.New("key component too long")
	// ErrMalformedKey is returned by DecodeKey for any byte string
	// that is not a full key in this codec's format. Scans rely on
	// this to safely skip foreign or corrupt keys.
	ErrMalformedKey = errors.New("malformed key")
)

// Key is a decoded full cell address.
type Key struct {
	Row         string
	Column      string
	TimestampMs uint64
}

// Codec is the encode/decode contract shared by both wire variants.
// A full key requires row and column; prefixes bound a scan to all
// cells sharing the partial address.
type Codec interface {
	// EncodeKey builds the full key for one cell.
	EncodeKey(row, column string, tsMillis uint64) ([]byte, error)
	// RowPrefix builds the prefix matching every cell of a row.
	RowPrefix(row string) ([]byte, error)
	// ColumnPrefix builds the prefix matching every version of one
	// column. It is a strict byte-prefix of every full key for that
	// column and of no other key.
	ColumnPrefix(row, column string) ([]byte, error)
	// DecodeKey parses a full key. It never panics on malformed
	// input; anything that is not a full key in this codec's format
	// fails with ErrMalformedKey.
	DecodeKey(b []byte) (Key, error)
	// Name reports the variant name, as accepted by ForName.
	Name() string
}

// ForName returns the codec for a configured variant name.
func ForName(name string) (Codec, error) {
	switch name {
	case VariantSeparator, "":
		return SeparatorCodec{}, nil
	case VariantLength:
		return LengthCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown key codec variant: %q", name)
	}
}

// invertTimestamp flips a millisecond timestamp so that ascending
// byte order over the stored form equals descending chronological
// order. The mapping is its own inverse.
func invertTimestamp(tsMillis uint64) uint64 {
	return math.MaxUint64 - tsMillis
}

func appendTimestamp(dst []byte, tsMillis uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, invertTimestamp(tsMillis))
}

func decodeTimestamp(b []byte) (uint64, error) {
	if len(b) != timestampSize {
		return 0, fmt.Errorf("%w: timestamp field is %d bytes, want %d", ErrMalformedKey, len(b), timestampSize)
	}
	return invertTimestamp(binary.BigEndian.Uint64(b)), nil
}
