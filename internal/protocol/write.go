package protocol

import (
	"net/url"
	"strings"

	"github.com/widetable/widetable-db/internal/widecolumn"
)

type writeQuery struct {
	RowKey      string
	Dataset     string
	Qualifiers  []string
	Values      []string
	TimestampMs *uint64
}

// parseWrite parses a write query string into a structured form.
// Values are URL-escaped on the wire so they can carry spaces; one
// optional timestamp applies to every qualifier/value pair.
func parseWrite(input string) (*writeQuery, error) {
	parsed := &writeQuery{}

	for _, part := range strings.Fields(input) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, newError(ErrInvalidFormat,
				"parameters must be key=value pairs, got: %s", part)
		}

		key, value := kv[0], kv[1]

		decoded, err := url.QueryUnescape(value)
		if err != nil {
			return nil, newError(ErrInvalidFormat, "failed to decode value: %s", err)
		}

		switch key {
		case "key":
			parsed.RowKey = decoded
		case "dataset":
			parsed.Dataset = decoded
		case "qualifier":
			parsed.Qualifiers = append(parsed.Qualifiers, decoded)
		case "value":
			parsed.Values = append(parsed.Values, decoded)
		case "timestamp":
			ms, err := parseMillis(decoded)
			if err != nil {
				return nil, err
			}
			parsed.TimestampMs = ms
		default:
			return nil, newError(ErrUnknownParameter, "%s", key)
		}
	}

	if parsed.RowKey == "" {
		return nil, newError(ErrMissingKey, "write queries require key=<row key>")
	}
	if len(parsed.Qualifiers) == 0 {
		return nil, newError(ErrInvalidFormat, "missing qualifier")
	}
	if len(parsed.Qualifiers) != len(parsed.Values) {
		return nil, newError(ErrInvalidFormat,
			"number of qualifiers (%d) doesn't match number of values (%d)",
			len(parsed.Qualifiers), len(parsed.Values))
	}

	return parsed, nil
}

func (w *writeQuery) params() *widecolumn.PutParams {
	items := make([]widecolumn.Item, 0, len(w.Qualifiers))
	for i, qualifier := range w.Qualifiers {
		items = append(items, widecolumn.Item{
			Column:      qualifier,
			Value:       w.Values[i],
			TimestampMs: w.TimestampMs,
		})
	}
	return &widecolumn.PutParams{
		RowKey:  w.RowKey,
		Dataset: w.Dataset,
		Items:   items,
	}
}
