package widecolumn

import (
	"bytes"
	"fmt"

	"github.com/widetable/widetable-db/internal/store"
)

// GetParams describe one row read. Nil Columns means every column of
// the row; Versions <= 0 means 1. StartMs and EndMs bound the
// timestamps (inclusive) when set.
type GetParams struct {
	RowKey   string
	Dataset  string
	Columns  []string
	Versions int
	StartMs  *uint64
	EndMs    *uint64
}

// GetRow returns up to Versions most-recent versions per column,
// newest first. It runs one forward prefix scan per requested column
// (or a single row-level scan), stopping each scan at the first key
// outside the prefix. Keys the codec does not recognize are skipped;
// a value the codec cannot deserialize fails the whole call, since
// returning a wrong value is worse than failing loudly.
func (s *Store) GetRow(p *GetParams) (Row, error) {
	part, err := s.resolver.Resolve(p.Dataset)
	if err != nil {
		return nil, err
	}

	versions := p.Versions
	if versions <= 0 {
		versions = 1
	}

	prefixes, err := s.scanPrefixes(p.RowKey, p.Columns)
	if err != nil {
		return nil, err
	}

	result := make(Row)
	for _, sp := range prefixes {
		if err := s.scanPrefix(part, sp, versions, p.StartMs, p.EndMs, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// scanPrefix collects in-range versions for every column under one
// prefix into result.
func (s *Store) scanPrefix(part store.Partition, sp scanRange, versions int, startMs, endMs *uint64, result Row) error {
	it := part.NewIterator(sp.prefix)
	defer it.Release()

	// Within one column the keys arrive newest-first, so a version
	// older than StartMs means everything further in that column is
	// older too. For a single-column prefix that ends the scan; for a
	// row-level prefix only that column is exhausted and the scan
	// skips ahead to the next one.
	exhausted := ""
	sawExhausted := false

	for it.Next() {
		key := it.Key()
		if !bytes.HasPrefix(key, sp.prefix) {
			break
		}

		decoded, err := s.keys.DecodeKey(key)
		if err != nil {
			// Foreign or corrupt keys never blind the reader to the
			// rest of the range.
			s.logger.Debug().Err(err).Msg("skipping undecodable key during scan")
			continue
		}

		if sawExhausted && decoded.Column == exhausted {
			continue
		}
		if startMs != nil && decoded.TimestampMs < *startMs {
			if sp.singleColumn {
				break
			}
			exhausted, sawExhausted = decoded.Column, true
			continue
		}
		if endMs != nil && decoded.TimestampMs > *endMs {
			continue
		}

		have := result[decoded.Column]
		if len(have) >= versions {
			if sp.singleColumn {
				break
			}
			continue
		}

		// The iterator owns its value buffer only until Next, and
		// codecs like bytes return their input unchanged, so the
		// retained version must deserialize from a copy.
		value, err := s.values.Deserialize(append([]byte(nil), it.Value()...))
		if err != nil {
			return fmt.Errorf("column %q at %d: %w", decoded.Column, decoded.TimestampMs, err)
		}
		result[decoded.Column] = append(have, Version{
			TimestampMs: decoded.TimestampMs,
			Value:       value,
		})
	}
	return it.Error()
}

// scanRange is one bounded range of a partition: either every cell
// of one column, or every cell of the row.
type scanRange struct {
	prefix       []byte
	singleColumn bool
}

func (s *Store) scanPrefixes(rowKey string, columns []string) ([]scanRange, error) {
	if len(columns) == 0 {
		prefix, err := s.keys.RowPrefix(rowKey)
		if err != nil {
			return nil, fmt.Errorf("row prefix for %q: %w", rowKey, err)
		}
		return []scanRange{{prefix: prefix}}, nil
	}

	prefixes := make([]scanRange, 0, len(columns))
	for _, column := range columns {
		prefix, err := s.keys.ColumnPrefix(rowKey, column)
		if err != nil {
			return nil, fmt.Errorf("column prefix for %q/%q: %w", rowKey, column, err)
		}
		prefixes = append(prefixes, scanRange{prefix: prefix, singleColumn: true})
	}
	return prefixes, nil
}
