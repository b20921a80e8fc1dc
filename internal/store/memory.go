package store

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/tidwall/btree"
)

// MemoryStore is an in-memory engine with the same partition and
// resolver semantics as the disk store. It backs tests and embedded
// callers that do not want files on disk.
type MemoryStore struct {
	partitions map[string]*memPartition
}

// OpenMemory creates an empty in-memory store with the declared
// datasets. The "default" dataset is always included.
func OpenMemory(datasets []string) *MemoryStore {
	s := &MemoryStore{partitions: make(map[string]*memPartition)}
	for _, name := range withDefault(datasets) {
		if _, ok := s.partitions[name]; ok {
			continue
		}
		s.partitions[name] = newMemPartition()
	}
	return s
}

// Resolve returns the partition for a declared dataset. An empty name
// resolves to the default dataset.
func (s *MemoryStore) Resolve(dataset string) (Partition, error) {
	name := normalizeDataset(dataset)
	p, ok := s.partitions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q was not declared at open time", ErrUnknownDataset, name)
	}
	return p, nil
}

// Close is a no-op; it exists so both engines share a lifecycle shape.
func (s *MemoryStore) Close() error { return nil }

type memPair struct {
	key   []byte
	value []byte
}

type memPartition struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[memPair]
}

func newMemPartition() *memPartition {
	return &memPartition{
		tree: btree.NewBTreeG(func(a, b memPair) bool {
			return bytes.Compare(a.key, b.key) < 0
		}),
	}
}

func (p *memPartition) Get(key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	item, ok := p.tree.Get(memPair{key: key})
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), item.value...), nil
}

func (p *memPartition) Put(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(key, value)
	return nil
}

func (p *memPartition) Delete(key []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tree.Delete(memPair{key: key})
	return nil
}

// set copies both key and value so callers may reuse their buffers.
func (p *memPartition) set(key, value []byte) {
	p.tree.Set(memPair{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

// NewIterator snapshots the matching tail of the tree at creation
// time, so iteration observes a consistent view even while writers
// proceed. Fine for an in-memory engine; the disk engine streams.
func (p *memPartition) NewIterator(start []byte) Iterator {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var pairs []memPair
	p.tree.Ascend(memPair{key: start}, func(item memPair) bool {
		pairs = append(pairs, item)
		return true
	})
	return &memIterator{pairs: pairs, idx: -1}
}

func (p *memPartition) NewBatch() Batch {
	return &memBatch{part: p}
}

func (p *memPartition) Write(b Batch) error {
	mb, ok := b.(*memBatch)
	if !ok || mb.part != p {
		return fmt.Errorf("batch was not created by this partition")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, op := range mb.ops {
		if op.delete {
			p.tree.Delete(memPair{key: op.key})
		} else {
			p.set(op.key, op.value)
		}
	}
	return nil
}

type memIterator struct {
	pairs []memPair
	idx   int
}

func (it *memIterator) Next() bool {
	it.idx++
	return it.idx < len(it.pairs)
}

func (it *memIterator) Key() []byte   { return it.pairs[it.idx].key }
func (it *memIterator) Value() []byte { return it.pairs[it.idx].value }
func (it *memIterator) Release()      {}
func (it *memIterator) Error() error  { return nil }

type memOp struct {
	key    []byte
	value  []byte
	delete bool
}

type memBatch struct {
	part *memPartition
	ops  []memOp
}

func (b *memBatch) Put(key, value []byte) {
	b.ops = append(b.ops, memOp{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

func (b *memBatch) Delete(key []byte) {
	b.ops = append(b.ops, memOp{
		key:    append([]byte(nil), key...),
		delete: true,
	})
}

func (b *memBatch) Len() int { return len(b.ops) }
func (b *memBatch) Reset()   { b.ops = nil }
