package widecolumn

import (
	"fmt"
	"time"
)

// PutParams describe one atomic write to a row. An empty Dataset
// targets the default dataset.
type PutParams struct {
	RowKey  string
	Dataset string
	Items   []Item
}

// PutRow writes every item as a cell at (row, column, timestamp).
// Items that fail key encoding or value serialization are skipped and
// logged; the remaining items still commit as one atomic batch. No
// write is issued when nothing survives. Writing to an existing
// (row, column, timestamp) address overwrites the prior value.
func (s *Store) PutRow(p *PutParams) error {
	part, err := s.resolver.Resolve(p.Dataset)
	if err != nil {
		return err
	}

	batch := part.NewBatch()
	for _, item := range p.Items {
		ts := s.nowMs()
		if item.TimestampMs != nil {
			ts = *item.TimestampMs
		}

		key, err := s.keys.EncodeKey(p.RowKey, item.Column, ts)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("row", p.RowKey).
				Str("column", item.Column).
				Msg("skipping item: key encoding failed")
			continue
		}

		value, err := s.values.Serialize(item.Value)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("row", p.RowKey).
				Str("column", item.Column).
				Msg("skipping item: value serialization failed")
			continue
		}

		batch.Put(key, value)
	}

	if batch.Len() == 0 {
		return nil
	}
	if err := part.Write(batch); err != nil {
		return fmt.Errorf("write batch for row %q: %w", p.RowKey, err)
	}
	return nil
}

func wallClockMs() uint64 {
	return uint64(time.Now().UnixMilli())
}
