package protocol

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/widetable/widetable-db/internal/widecolumn"
)

// readQuery are the parameters for any supported read query
type readQuery struct {
	RowKey     string
	Dataset    string
	Qualifiers []string
	Versions   int
	StartMs    *uint64
	EndMs      *uint64
}

// parseRead parses a query and returns a readQuery which is used to
// safely run an operation. If there are any errors, it will return a
// protocol.Error. Values are URL-unescaped exactly as parseWrite
// unescapes them, so a written row is addressable by the same bytes.
func parseRead(input string) (*readQuery, error) {
	parsed := &readQuery{}

	for _, part := range strings.Fields(input) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, newError(ErrInvalidFormat,
				"parameters must be key=value pairs, got: %s", part)
		}

		key := kv[0]
		value, err := url.QueryUnescape(kv[1])
		if err != nil {
			return nil, newError(ErrInvalidFormat, "failed to decode value: %s", err)
		}

		switch key {
		case "key":
			parsed.RowKey = value
		case "dataset":
			parsed.Dataset = value
		case "qualifier":
			parsed.Qualifiers = append(parsed.Qualifiers, value)
		case "versions":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return nil, newError(ErrInvalidFormat,
					"versions must be a positive number, received %s", value)
			}
			parsed.Versions = n
		case "start":
			ms, err := parseMillis(value)
			if err != nil {
				return nil, err
			}
			parsed.StartMs = ms
		case "end":
			ms, err := parseMillis(value)
			if err != nil {
				return nil, err
			}
			parsed.EndMs = ms
		default:
			return nil, newError(ErrUnknownParameter, "%s", key)
		}
	}

	if parsed.RowKey == "" {
		return nil, newError(ErrMissingKey, "read queries require key=<row key>")
	}

	return parsed, nil
}

func (r *readQuery) params() *widecolumn.GetParams {
	return &widecolumn.GetParams{
		RowKey:   r.RowKey,
		Dataset:  r.Dataset,
		Columns:  r.Qualifiers,
		Versions: r.Versions,
		StartMs:  r.StartMs,
		EndMs:    r.EndMs,
	}
}

func parseMillis(value string) (*uint64, error) {
	ms, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, newError(ErrInvalidFormat,
			"timestamps are unsigned milliseconds, received %s", value)
	}
	return &ms, nil
}
