// Package store provides the ordered key-value engines the row store
// is layered on, and the dataset resolver that maps a dataset name to
// an isolated partition of the keyspace.
//
// Datasets form a closed world: every name is declared when the store
// is opened, the "default" dataset always exists, and resolving an
// undeclared name is a configuration error rather than an implicit
// create. Each partition keeps its keys in ascending byte order and
// supports forward iteration from an arbitrary start key.
package store

import "errors"

// DefaultDataset is the partition used when a caller does not name one.
const DefaultDataset = "default"

var (
	// ErrNotFound is returned by Get for an absent key.
	ErrNotFound = errors.New("key not found")
	// ErrUnknownDataset is returned when resolving a dataset name that
	// was not declared at open time.
	ErrUnknownDataset = errors.New("unknown dataset")
	// ErrClosed is returned for operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// Resolver maps a dataset name to its partition. An empty name
// resolves to DefaultDataset.
type Resolver interface {
	Resolve(dataset string) (Partition, error)
}

// Partition is one isolated, ordered keyspace.
type Partition interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	// NewIterator iterates key-value pairs in ascending byte order,
	// starting at the first key >= start. The iterator is unbounded;
	// callers impose their own stop condition.
	NewIterator(start []byte) Iterator
	// NewBatch returns an empty write batch for this partition.
	NewBatch() Batch
	// Write atomically applies a batch created by NewBatch.
	Write(b Batch) error
}

// Iterator walks key-value pairs in ascending byte order. Key and
// Value are only valid until the next call to Next; callers copy
// anything they retain.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Batch buffers puts and deletes for one atomic write.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	// Len reports the number of buffered operations.
	Len() int
	Reset()
}

// normalizeDataset applies the default-dataset rule at one single
// point, so callers never special-case the empty name.
func normalizeDataset(name string) string {
	if name == "" {
		return DefaultDataset
	}
	return name
}

// withDefault prepends DefaultDataset to a declared-name list unless
// already present.
func withDefault(datasets []string) []string {
	for _, name := range datasets {
		if name == DefaultDataset {
			return datasets
		}
	}
	return append([]string{DefaultDataset}, datasets...)
}
