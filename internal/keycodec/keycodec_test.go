package keycodec

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func allCodecs() []Codec {
	return []Codec{SeparatorCodec{}, LengthCodec{}}
}

func TestForName(t *testing.T) {
	t.Parallel()

	c, err := ForName("separator")
	require.NoError(t, err)
	require.Equal(t, VariantSeparator, c.Name())

	c, err = ForName("length")
	require.NoError(t, err)
	require.Equal(t, VariantLength, c.Name())

	// Empty selects the default variant.
	c, err = ForName("")
	require.NoError(t, err)
	require.Equal(t, VariantSeparator, c.Name())

	_, err = ForName("csv")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		row    string
		column string
		ts     uint64
	}{
		{name: "plain", row: "user#42", column: "email", ts: 1714000000000},
		{name: "zero timestamp", row: "r", column: "c", ts: 0},
		{name: "max timestamp", row: "r", column: "c", ts: math.MaxUint64},
		{name: "empty row", row: "", column: "c", ts: 7},
		{name: "empty column", row: "r", column: "", ts: 7},
		{name: "empty row and column", row: "", column: "", ts: 7},
		{name: "unicode components", row: "행#1", column: "컬럼", ts: 99},
	}

	for _, codec := range allCodecs() {
		for _, tt := range tests {
			codec, tt := codec, tt
			t.Run(codec.Name()+"/"+tt.name, func(t *testing.T) {
				t.Parallel()
				key, err := codec.EncodeKey(tt.row, tt.column, tt.ts)
				require.NoError(t, err)

				decoded, err := codec.DecodeKey(key)
				require.NoError(t, err)
				require.Equal(t, Key{Row: tt.row, Column: tt.column, TimestampMs: tt.ts}, decoded)
			})
		}
	}
}

// Newer timestamps must sort strictly before older ones so that a
// forward scan yields versions newest-first.
func TestTimestampOrdering(t *testing.T) {
	t.Parallel()

	pairs := [][2]uint64{
		{1, 0},
		{1714000000001, 1714000000000},
		{math.MaxUint64, math.MaxUint64 - 1},
		{math.MaxUint64, 0},
		{256, 255}, // inverted form differs in a non-final byte
	}

	for _, codec := range allCodecs() {
		for _, p := range pairs {
			newer, older := p[0], p[1]
			newKey, err := codec.EncodeKey("row", "col", newer)
			require.NoError(t, err)
			oldKey, err := codec.EncodeKey("row", "col", older)
			require.NoError(t, err)
			require.Negative(t, bytes.Compare(newKey, oldKey),
				"%s: key for ts=%d must sort before ts=%d", codec.Name(), newer, older)
		}
	}
}

func TestPrefixContainment(t *testing.T) {
	t.Parallel()

	for _, codec := range allCodecs() {
		full, err := codec.EncodeKey("row", "col", 12345)
		require.NoError(t, err)

		colPrefix, err := codec.ColumnPrefix("row", "col")
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(full, colPrefix), codec.Name())

		rowPrefix, err := codec.RowPrefix("row")
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(full, rowPrefix), codec.Name())
		require.True(t, bytes.HasPrefix(colPrefix, rowPrefix), codec.Name())
	}
}

// A column prefix must not match a longer column sharing the same
// leading characters, and likewise for row keys.
func TestPrefixNoFalsePositive(t *testing.T) {
	t.Parallel()

	for _, codec := range allCodecs() {
		colPrefix, err := codec.ColumnPrefix("row", "col")
		require.NoError(t, err)
		longer, err := codec.EncodeKey("row", "colour", 1)
		require.NoError(t, err)
		require.False(t, bytes.HasPrefix(longer, colPrefix), codec.Name())

		rowPrefix, err := codec.RowPrefix("user#1")
		require.NoError(t, err)
		otherRow, err := codec.EncodeKey("user#10", "col", 1)
		require.NoError(t, err)
		require.False(t, bytes.HasPrefix(otherRow, rowPrefix), codec.Name())
	}
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	for _, codec := range allCodecs() {
		full, err := codec.EncodeKey("row", "col", 1714000000000)
		require.NoError(t, err)

		inputs := map[string][]byte{
			"empty":          {},
			"truncated key":  full[:len(full)-3],
			"over-long key":  append(append([]byte{}, full...), 0xfe),
			"timestamp only": full[len(full)-8:],
			"random bytes":   {0xff, 0xfe, 0x01},
			"single zero":    {0x00},
			"foreign scheme": append([]byte{0x09}, []byte("short")...),
		}
		for name, in := range inputs {
			_, err := codec.DecodeKey(in)
			require.ErrorIs(t, err, ErrMalformedKey, "%s: %s", codec.Name(), name)
		}

		// Prefixes are never valid input to DecodeKey.
		prefix, err := codec.ColumnPrefix("row", "col")
		require.NoError(t, err)
		_, err = codec.DecodeKey(prefix)
		require.ErrorIs(t, err, ErrMalformedKey, codec.Name())
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	t.Parallel()

	// Hand-build keys whose string fields hold invalid UTF-8.
	sep := []byte{0xff, 0xfe}
	sep = append(sep, 0x00)
	sep = append(sep, 'c')
	sep = append(sep, 0x00)
	sep = append(sep, make([]byte, 8)...)
	_, err := (SeparatorCodec{}).DecodeKey(sep)
	require.ErrorIs(t, err, ErrMalformedKey)

	lp := []byte{2, 0xff, 0xfe, 1, 'c'}
	lp = append(lp, make([]byte, 8)...)
	_, err = (LengthCodec{}).DecodeKey(lp)
	require.ErrorIs(t, err, ErrMalformedKey)
}

func TestSeparatorRejectsSeparatorByte(t *testing.T) {
	t.Parallel()

	codec := SeparatorCodec{}
	_, err := codec.EncodeKey("row\x00x", "col", 1)
	require.ErrorIs(t, err, ErrInvalidComponent)
	_, err = codec.EncodeKey("row", "co\x00l", 1)
	require.ErrorIs(t, err, ErrInvalidComponent)
	_, err = codec.RowPrefix("ro\x00w")
	require.ErrorIs(t, err, ErrInvalidComponent)
}

func TestLengthRejectsOversizedComponent(t *testing.T) {
	t.Parallel()

	codec := LengthCodec{}
	long := string(bytes.Repeat([]byte{'a'}, 256))

	_, err := codec.EncodeKey(long, "col", 1)
	require.ErrorIs(t, err, ErrComponentTooLong)
	_, err = codec.ColumnPrefix("row", long)
	require.ErrorIs(t, err, ErrComponentTooLong)

	// 255 bytes is the limit, not beyond it.
	max := string(bytes.Repeat([]byte{'a'}, 255))
	key, err := codec.EncodeKey(max, max, 1)
	require.NoError(t, err)
	decoded, err := codec.DecodeKey(key)
	require.NoError(t, err)
	require.Equal(t, max, decoded.Row)
	require.Equal(t, max, decoded.Column)
}

// The length variant can hold bytes the separator variant cannot.
func TestLengthAllowsSeparatorByte(t *testing.T) {
	t.Parallel()

	codec := LengthCodec{}
	key, err := codec.EncodeKey("ro\x00w", "co\x00l", 42)
	require.NoError(t, err)
	decoded, err := codec.DecodeKey(key)
	require.NoError(t, err)
	require.Equal(t, "ro\x00w", decoded.Row)
	require.Equal(t, "co\x00l", decoded.Column)
}
