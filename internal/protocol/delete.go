package protocol

import (
	"net/url"
	"strings"

	"github.com/widetable/widetable-db/internal/widecolumn"
)

type deleteQuery struct {
	RowKey       string
	Dataset      string
	Qualifiers   []string
	TimestampsMs []uint64
}

// parseDelete parses a delete query. With no qualifiers the whole row
// is deleted; timestamps narrow the delete to specific versions and
// require exactly one qualifier, which the row store enforces. Values
// are URL-unescaped the same way parseWrite unescapes them.
func parseDelete(input string) (*deleteQuery, error) {
	parsed := &deleteQuery{}

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
		case "timestamp":
			ms, err := parseMillis(value)
			if err != nil {
				return nil, err
			}
			parsed.TimestampsMs = append(parsed.TimestampsMs, *ms)
		default:
			return nil, newError(ErrUnknownParameter, "%s", key)
		}
	}

	if parsed.RowKey == "" {
		return nil, newError(ErrMissingKey, "delete queries require key=<row key>")
	}

	return parsed, nil
}

func (d *deleteQuery) params() *widecolumn.DeleteParams {
	return &widecolumn.DeleteParams{
		RowKey:       d.RowKey,
		Dataset:      d.Dataset,
		Columns:      d.Qualifiers,
		TimestampsMs: d.TimestampsMs,
	}
}
