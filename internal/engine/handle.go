package engine

import (
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handle implements the server's handler interface. Each request gets
// a correlation id so its log lines can be tied together.
func (e *Engine) Handle(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing connection")
		}
	}()

	reqID := uuid.NewString()
	logger := log.With().Str("request_id", reqID).Str("remote", conn.RemoteAddr().String()).Logger()

	buf, err := e.readConn(conn)
	if err != nil {
		logger.Warn().Err(err).Msg("read error")
		return
	}

	response, err := e.ops.RunOperation(buf)
	if err != nil {
		logger.Debug().Err(err).Msg("operation failed")
		e.writeResponse(conn, []byte("ERROR: "+err.Error()))
		return
	}

	e.writeResponse(conn, response)
}

func (e *Engine) readConn(conn net.Conn) ([]byte, error) {
	buf := make([]byte, e.maxBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (e *Engine) writeResponse(conn net.Conn, response []byte) {
	if _, err := conn.Write(response); err != nil {
		log.Warn().Err(err).Msg("error writing response")
	}
}
