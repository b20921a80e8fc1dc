// Package engine connects the network surface to the protocol
// manager: one request buffer in, one response out.
package engine

import (
	"errors"
)

type operations interface {
	RunOperation(buf []byte) ([]byte, error)
}

// Engine is the connection handler of the WideTable server.
type Engine struct {
	ops           operations
	maxBufferSize int
}

type Config struct {
	Operations operations
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Operations == nil {
		errGrp = append(errGrp, errors.New("operations manager is required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		ops:           cfg.Operations,
		maxBufferSize: 64 * 1024,
	}, nil
}

// Start is a no-op; the engine has no state to warm up.
func (e *Engine) Start() error { return nil }

func (e *Engine) Stop() error { return nil }

func (e *Engine) Name() string { return "WideTable Engine" }
