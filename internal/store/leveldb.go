package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Store is the disk-backed engine: one LevelDB database per declared
// dataset, each under its own subdirectory of the root dir. Keeping
// datasets in separate databases gives real keyspace isolation without
// reserving bytes in the key layout for the dataset name.
type Store struct {
	dir        string
	partitions map[string]*levelPartition
	closed     bool
}

// Open opens (or creates) the databases for every declared dataset.
// The "default" dataset is always included.
func Open(dir string, datasets []string) (*Store, error) {
	s := &Store{
		dir:        dir,
		partitions: make(map[string]*levelPartition),
	}
	for _, name := range withDefault(datasets) {
		if _, ok := s.partitions[name]; ok {
			continue
		}
		db, err := leveldb.OpenFile(filepath.Join(dir, name), nil)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("open dataset %q: %w", name, err)
		}
		s.partitions[name] = &levelPartition{db: db}
	}
	return s, nil
}

// Resolve returns the partition for a declared dataset. An empty name
// resolves to the default dataset.
func (s *Store) Resolve(dataset string) (Partition, error) {
	if s.closed {
		return nil, ErrClosed
	}
	name := normalizeDataset(dataset)
	p, ok := s.partitions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q was not declared at open time", ErrUnknownDataset, name)
	}
	return p, nil
}

// Datasets returns the declared dataset names.
func (s *Store) Datasets() []string {
	names := make([]string, 0, len(s.partitions))
	for name := range s.partitions {
		names = append(names, name)
	}
	return names
}

// Close closes every partition. In-flight calls must have completed;
// that is the caller's responsibility.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for name, p := range s.partitions {
		if err := p.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dataset %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

type levelPartition struct {
	db *leveldb.DB
}

func (p *levelPartition) Get(key []byte) ([]byte, error) {
	val, err := p.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (p *levelPartition) Put(key, value []byte) error {
	return p.db.Put(key, value, nil)
}

func (p *levelPartition) Delete(key []byte) error {
	return p.db.Delete(key, nil)
}

func (p *levelPartition) NewIterator(start []byte) Iterator {
	// goleveldb's iterator already satisfies store.Iterator.
	return p.db.NewIterator(&util.Range{Start: start}, nil)
}

func (p *levelPartition) NewBatch() Batch {
	return &levelBatch{b: new(leveldb.Batch)}
}

func (p *levelPartition) Write(b Batch) error {
	lb, ok := b.(*levelBatch)
	if !ok {
		return fmt.Errorf("batch was not created by this partition")
	}
	return p.db.Write(lb.b, nil)
}

type levelBatch struct {
	b *leveldb.Batch
}

func (b *levelBatch) Put(key, value []byte) { b.b.Put(key, value) }
func (b *levelBatch) Delete(key []byte)     { b.b.Delete(key) }
func (b *levelBatch) Len() int              { return b.b.Len() }
func (b *levelBatch) Reset()                { b.b.Reset() }
