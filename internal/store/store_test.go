package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// openEngines builds one store of each engine kind with the same
// declared datasets, so every contract test runs against both.
func openEngines(t *testing.T, datasets []string) map[string]Resolver {
	t.Helper()

	disk, err := Open(t.TempDir(), datasets)
	require.NoError(t, err)
	t.Cleanup(func() { _ = disk.Close() })

	return map[string]Resolver{
		"leveldb": disk,
		"memory":  OpenMemory(datasets),
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	for name, eng := range openEngines(t, []string{"metrics"}) {
		t.Run(name, func(t *testing.T) {
			// The default dataset always exists.
			p, err := eng.Resolve("default")
			require.NoError(t, err)
			require.NotNil(t, p)

			// The empty name resolves to the default dataset.
			byEmpty, err := eng.Resolve("")
			require.NoError(t, err)
			require.Equal(t, p, byEmpty)

			_, err = eng.Resolve("metrics")
			require.NoError(t, err)

			// Undeclared datasets are a configuration error, never
			// implicitly created.
			_, err = eng.Resolve("undeclared")
			require.ErrorIs(t, err, ErrUnknownDataset)
		})
	}
}

func TestPartitionGetPutDelete(t *testing.T) {
	t.Parallel()

	for name, eng := range openEngines(t, nil) {
		t.Run(name, func(t *testing.T) {
			p, err := eng.Resolve("")
			require.NoError(t, err)

			_, err = p.Get([]byte("missing"))
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, p.Put([]byte("k"), []byte("v1")))
			got, err := p.Get([]byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("v1"), got)

			// Overwrite at the same key.
			require.NoError(t, p.Put([]byte("k"), []byte("v2")))
			got, err = p.Get([]byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("v2"), got)

			require.NoError(t, p.Delete([]byte("k")))
			_, err = p.Get([]byte("k"))
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestIteratorAscendsFromStart(t *testing.T) {
	t.Parallel()

	for name, eng := range openEngines(t, nil) {
		t.Run(name, func(t *testing.T) {
			p, err := eng.Resolve("")
			require.NoError(t, err)

			// Inserted out of order on purpose.
			for _, k := range []string{"b", "d", "a", "c", "e"} {
				require.NoError(t, p.Put([]byte(k), []byte("v-"+k)))
			}

			it := p.NewIterator([]byte("b"))
			defer it.Release()

			var keys []string
			for it.Next() {
				keys = append(keys, string(it.Key()))
				require.Equal(t, "v-"+string(it.Key()), string(it.Value()))
			}
			require.NoError(t, it.Error())
			require.Equal(t, []string{"b", "c", "d", "e"}, keys)
		})
	}
}

func TestBatchIsAtomicSet(t *testing.T) {
	t.Parallel()

	for name, eng := range openEngines(t, nil) {
		t.Run(name, func(t *testing.T) {
			p, err := eng.Resolve("")
			require.NoError(t, err)
			require.NoError(t, p.Put([]byte("stale"), []byte("x")))

			b := p.NewBatch()
			b.Put([]byte("k1"), []byte("v1"))
			b.Put([]byte("k2"), []byte("v2"))
			b.Delete([]byte("stale"))
			require.Equal(t, 3, b.Len())
			require.NoError(t, p.Write(b))

			got, err := p.Get([]byte("k1"))
			require.NoError(t, err)
			require.Equal(t, []byte("v1"), got)
			got, err = p.Get([]byte("k2"))
			require.NoError(t, err)
			require.Equal(t, []byte("v2"), got)
			_, err = p.Get([]byte("stale"))
			require.ErrorIs(t, err, ErrNotFound)

			b.Reset()
			require.Equal(t, 0, b.Len())
		})
	}
}

func TestDatasetPartitionsAreIsolated(t *testing.T) {
	t.Parallel()

	for name, eng := range openEngines(t, []string{"a", "b"}) {
		t.Run(name, func(t *testing.T) {
			pa, err := eng.Resolve("a")
			require.NoError(t, err)
			pb, err := eng.Resolve("b")
			require.NoError(t, err)

			require.NoError(t, pa.Put([]byte("k"), []byte("from-a")))
			require.NoError(t, pb.Put([]byte("k"), []byte("from-b")))

			got, err := pa.Get([]byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("from-a"), got)
			got, err = pb.Get([]byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("from-b"), got)
		})
	}
}

func TestDiskStoreClose(t *testing.T) {
	t.Parallel()

	s, err := Open(t.TempDir(), []string{"events"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"default", "events"}, s.Datasets())

	require.NoError(t, s.Close())
	_, err = s.Resolve("events")
	require.ErrorIs(t, err, ErrClosed)

	// Closing twice is harmless.
	require.NoError(t, s.Close())
}
