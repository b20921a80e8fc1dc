// Package widecolumn implements the versioned row store: rows keyed
// by string, holding named columns, each column holding timestamped
// versions of a value. Rows are never stored as entities; a row is
// just the common prefix of its cells' keys in one dataset partition.
package widecolumn

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/widetable/widetable-db/internal/keycodec"
	"github.com/widetable/widetable-db/internal/store"
	"github.com/widetable/widetable-db/internal/valuecodec"
)

// ErrTimestampDelete is returned when specific timestamps are given to
// DeleteRow without exactly one column to apply them to.
var ErrTimestampDelete = errors.New("timestamp deletes require exactly one column")

// Version is one stored value of a column.
type Version struct {
	TimestampMs uint64 `json:"ts"`
	Value       any    `json:"value"`
}

// Row maps column names to their versions, newest first. Columns with
// no matching versions are absent, never present and empty.
type Row map[string][]Version

// Item is one cell to write. A nil TimestampMs means "now".
type Item struct {
	Column      string
	Value       any
	TimestampMs *uint64
}

// Store runs the read, write and delete algorithms over one resolved
// partition at a time. It holds no locks and no mutable state; the
// atomicity of a single call's batch is the underlying engine's.
type Store struct {
	resolver store.Resolver
	keys     keycodec.Codec
	values   valuecodec.Codec
	logger   zerolog.Logger
	nowMs    func() uint64
}

type Config struct {
	Resolver   store.Resolver
	KeyCodec   keycodec.Codec
	ValueCodec valuecodec.Codec
	// Logger receives skipped-item and skipped-key events. Optional;
	// defaults to a no-op logger.
	Logger *zerolog.Logger
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Resolver == nil {
		errGrp = append(errGrp, errors.New("resolver is required"))
	}
	if c.KeyCodec == nil {
		errGrp = append(errGrp, errors.New("key codec is required"))
	}
	if c.ValueCodec == nil {
		errGrp = append(errGrp, errors.New("value codec is required"))
	}
	return errors.Join(errGrp...)
}

// New creates a row store over the given resolver and codecs.
func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Store{
		resolver: cfg.Resolver,
		keys:     cfg.KeyCodec,
		values:   cfg.ValueCodec,
		logger:   logger,
		nowMs:    wallClockMs,
	}, nil
}
