package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kastelo.dev/cfgxlsx/server"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serve(ctx context.Context) error {
	opts, err := c.options()
	if err != nil {
		return err
	}

	cfg := server.Config{
		Options:   opts,
		MaxUpload: *c.serveMaxUpload,
		Logger:    c.log,
	}
	store, err := c.openHistory(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		cfg.History = store
	}

	srv := server.New(cfg)
	errC := make(chan error, 1)
	go func() {
		errC <- srv.Start(*c.serveListen)
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.log.Info().Msg("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
