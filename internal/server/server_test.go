package server

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type echoHandler struct{}

func (echoHandler) Handle(conn net.Conn) {
	defer conn.Close()
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	_, _ = conn.Write(buf[:n])
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	got, err := New(&Config{})
	require.Error(t, err)
	require.Nil(t, got)
}

func TestServeAndStop(t *testing.T) {
	t.Parallel()

	srv, err := New(&Config{
		Address: "127.0.0.1",
		Port:    "0", // pick a free port
		Handler: echoHandler{},
	})
	require.NoError(t, err)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(time.Second)))

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n]))

	require.NoError(t, srv.Stop())
	require.Error(t, <-serveErr) // Accept fails once the listener closes
}
