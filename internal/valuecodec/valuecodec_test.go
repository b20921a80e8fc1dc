package valuecodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"bytes", "string", "json", "msgpack"} {
		c, err := ForName(name)
		require.NoError(t, err)
		require.Equal(t, name, c.Name())
	}

	// Empty selects the default codec.
	c, err := ForName("")
	require.NoError(t, err)
	require.Equal(t, "string", c.Name())

	_, err = ForName("xml")
	require.Error(t, err)
}

func TestString(t *testing.T) {
	t.Parallel()

	c := String{}
	b, err := c.Serialize("active")
	require.NoError(t, err)
	v, err := c.Deserialize(b)
	require.NoError(t, err)
	require.Equal(t, "active", v)

	_, err = c.Serialize(struct{ X int }{1})
	require.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestBytes(t *testing.T) {
	t.Parallel()

	c := Bytes{}
	b, err := c.Serialize([]byte{0x01, 0x00, 0xff})
	require.NoError(t, err)
	v, err := c.Deserialize(b)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x00, 0xff}, v)

	_, err = c.Serialize(42)
	require.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestJSON(t *testing.T) {
	t.Parallel()

	c := JSON{}
	b, err := c.Serialize(map[string]any{"n": 1.5, "tags": []any{"a", "b"}})
	require.NoError(t, err)
	v, err := c.Deserialize(b)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"n": 1.5, "tags": []any{"a", "b"}}, v)

	_, err = c.Serialize(make(chan int))
	require.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = c.Deserialize([]byte("{truncated"))
	require.ErrorIs(t, err, ErrCorruptValue)
}

func TestMsgpack(t *testing.T) {
	t.Parallel()

	c := Msgpack{}
	b, err := c.Serialize(map[string]any{"count": int8(3)})
	require.NoError(t, err)
	v, err := c.Deserialize(b)
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 3, m["count"])

	_, err = c.Deserialize([]byte{0xc1}) // 0xc1 is never used in msgpack
	require.ErrorIs(t, err, ErrCorruptValue)
}
