// Package protocol defines the text wire protocol of the WideTable
// server and translates queries into row store operations.
package protocol

import (
	"errors"
)

const (
	Unknown = iota
	Read
	Write
	Delete
)

var (
	// ErrUnknown is returned when the leading verb is not a known
	// operation.
	ErrUnknown = errors.New("unknown widetable operation")
)

// Decode splits a request buffer into an operation type and its query
// payload.
func Decode(buf []byte) (int, []byte, error) {
	if len(buf) < 5 { // shortest verb plus separator
		return Unknown, nil, ErrUnknown
	}

	// Early return based on first byte
	switch buf[0] {
	case 'R': // READ
		if buf[1] == 'E' && buf[2] == 'A' && buf[3] == 'D' && buf[4] == ' ' {
			return Read, buf[5:], nil
		}
	case 'W': // WRITE
		if len(buf) >= 6 && buf[1] == 'R' && buf[2] == 'I' && buf[3] == 'T' && buf[4] == 'E' && buf[5] == ' ' {
			return Write, buf[6:], nil
		}
	case 'D': // DELETE
		if len(buf) >= 7 && buf[1] == 'E' && buf[2] == 'L' && buf[3] == 'E' && buf[4] == 'T' && buf[5] == 'E' && buf[6] == ' ' {
			return Delete, buf[7:], nil
		}
	}

	return Unknown, nil, ErrUnknown
}
