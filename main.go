package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/widetable/widetable-db/internal/app"
	"github.com/widetable/widetable-db/internal/config"
	"github.com/widetable/widetable-db/internal/engine"
	"github.com/widetable/widetable-db/internal/keycodec"
	"github.com/widetable/widetable-db/internal/protocol"
	"github.com/widetable/widetable-db/internal/server"
	"github.com/widetable/widetable-db/internal/store"
	"github.com/widetable/widetable-db/internal/valuecodec"
	"github.com/widetable/widetable-db/internal/widecolumn"
)

const (
	serviceName = "WideTable DB"
	stopTimeout = 5 * time.Second
)

func main() {
	application, err := initialize()
	if err != nil {
		panic(err)
	}

	if err = application.Run(context.Background()); err != nil {
		panic(err)
	}
}

func initialize() (*app.App, error) {
	configPath := flag.String("config", "", "path to widetable.conf (defaults to ~/.widetable/widetable.conf)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	keyCodec, err := keycodec.ForName(cfg.KeyCodec)
	if err != nil {
		return nil, err
	}
	valueCodec, err := valuecodec.ForName(cfg.ValueCodec)
	if err != nil {
		return nil, err
	}

	// One partition per declared dataset, plus "default".
	datasets, err := store.Open(cfg.DataDir, cfg.Datasets)
	if err != nil {
		return nil, err
	}

	rowLogger := log.With().Str("component", "widecolumn").Logger()
	rows, err := widecolumn.New(&widecolumn.Config{
		Resolver:   datasets,
		KeyCodec:   keyCodec,
		ValueCodec: valueCodec,
		Logger:     &rowLogger,
	})
	if err != nil {
		return nil, err
	}

	ops, err := protocol.New(&protocol.Config{Rows: rows})
	if err != nil {
		return nil, err
	}

	engineHandler, err := engine.New(&engine.Config{Operations: ops})
	if err != nil {
		return nil, err
	}

	srv, err := server.New(&server.Config{
		Address:        cfg.ServerAddress,
		Port:           cfg.ServerPort,
		Handler:        engineHandler,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		return nil, err
	}

	return app.New(&app.Config{
		ServiceName: serviceName,
		StopTimeout: stopTimeout,
	}, storeDependency{datasets}, engineHandler, srv)
}

// storeDependency adapts the dataset store to the app lifecycle so it
// closes after the server has drained.
type storeDependency struct {
	*store.Store
}

func (storeDependency) Start() error  { return nil }
func (d storeDependency) Stop() error { return d.Close() }
func (storeDependency) Name() string  { return "Dataset Store" }
