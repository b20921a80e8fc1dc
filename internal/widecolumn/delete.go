package widecolumn

import (
	"bytes"
	"fmt"

	"github.com/widetable/widetable-db/internal/store"
)

// DeleteParams describe one atomic delete. With TimestampsMs set,
// Columns must name exactly one column and only those versions are
// removed. Otherwise the named columns are removed entirely, or the
// whole row when Columns is empty.
type DeleteParams struct {
	RowKey       string
	Dataset      string
	Columns      []string
	TimestampsMs []uint64
}

// DeleteRow removes cells at the requested granularity. Specific
// timestamps delete by direct key construction, no scan; everything
// else is a prefix scan that collects matching keys into one atomic
// batch delete. Zero matches issue no write at all.
func (s *Store) DeleteRow(p *DeleteParams) error {
	part, err := s.resolver.Resolve(p.Dataset)
	if err != nil {
		return err
	}

	if len(p.TimestampsMs) > 0 {
		if len(p.Columns) != 1 {
			return fmt.Errorf("%w: got %d columns", ErrTimestampDelete, len(p.Columns))
		}
		return s.deleteTimestamps(part, p)
	}

	prefixes, err := s.scanPrefixes(p.RowKey, p.Columns)
	if err != nil {
		return err
	}

	batch := part.NewBatch()
	for _, sp := range prefixes {
		it := part.NewIterator(sp.prefix)
		for it.Next() {
			key := it.Key()
			if !bytes.HasPrefix(key, sp.prefix) {
				break
			}
			// The iterator owns its key buffer only until Next.
			batch.Delete(append([]byte(nil), key...))
		}
		err := it.Error()
		it.Release()
		if err != nil {
			return err
		}
	}

	if batch.Len() == 0 {
		return nil
	}
	if err := part.Write(batch); err != nil {
		return fmt.Errorf("delete batch for row %q: %w", p.RowKey, err)
	}
	return nil
}

// deleteTimestamps removes exactly the addressed versions of one
// column. Unencodable addresses are skipped and logged, matching the
// batch-write contract.
func (s *Store) deleteTimestamps(part store.Partition, p *DeleteParams) error {
	column := p.Columns[0]
	batch := part.NewBatch()
	for _, ts := range p.TimestampsMs {
		key, err := s.keys.EncodeKey(p.RowKey, column, ts)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("row", p.RowKey).
				Str("column", column).
				Uint64("ts", ts).
				Msg("skipping delete: key encoding failed")
			continue
		}
		batch.Delete(key)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := part.Write(batch); err != nil {
		return fmt.Errorf("delete batch for row %q: %w", p.RowKey, err)
	}
	return nil
}
