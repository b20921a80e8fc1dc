package protocol

import (
	"encoding/json"
	"errors"

	"github.com/widetable/widetable-db/internal/widecolumn"
)

type rowStore interface {
	PutRow(p *widecolumn.PutParams) error
	GetRow(p *widecolumn.GetParams) (widecolumn.Row, error)
	DeleteRow(p *widecolumn.DeleteParams) error
}

// Manager runs decoded protocol operations against the row store.
type Manager struct {
	rows rowStore
}

type Config struct {
	Rows rowStore
}

func (c *Config) validate() error {
	if c.Rows == nil {
		return errors.New("row store is required")
	}
	return nil
}

// New creates a new protocol manager
func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Manager{rows: cfg.Rows}, nil
}

// RunOperation decodes one request buffer, executes it and returns
// the response payload.
func (m *Manager) RunOperation(buf []byte) ([]byte, error) {
	msgType, queryBytes, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	if len(queryBytes) == 0 {
		return nil, newError(ErrInvalidFormat, "empty query")
	}

	switch msgType {
	case Read:
		return m.read(queryBytes)
	case Write:
		return m.write(queryBytes)
	case Delete:
		return m.delete(queryBytes)
	default:
		return nil, ErrUnknown
	}
}

func (m *Manager) read(query []byte) ([]byte, error) {
	parsed, err := parseRead(string(query))
	if err != nil {
		return nil, err
	}
	row, err := m.rows.GetRow(parsed.params())
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Key     string         `json:"key"`
		Columns widecolumn.Row `json:"cols"`
	}{Key: parsed.RowKey, Columns: row})
}

func (m *Manager) write(query []byte) ([]byte, error) {
	parsed, err := parseWrite(string(query))
	if err != nil {
		return nil, err
	}
	if err := m.rows.PutRow(parsed.params()); err != nil {
		return nil, err
	}
	return []byte("OK"), nil
}

func (m *Manager) delete(query []byte) ([]byte, error) {
	parsed, err := parseDelete(string(query))
	if err != nil {
		return nil, err
	}
	if err := m.rows.DeleteRow(parsed.params()); err != nil {
		return nil, err
	}
	return []byte("OK"), nil
}
