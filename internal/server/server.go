// Package server wires the BlockStore, MetaStore and HTTP transport into
// one supervised process. The listener runs as a suture service, so if
// its Serve method panics or returns an error the supervisor logs the
// event and restarts it instead of taking the whole process down. Panics
// inside individual handler goroutines are recovered by net/http itself.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/surfsync/surfsync/internal/blockstore"
	"github.com/surfsync/surfsync/internal/logger"
	"github.com/surfsync/surfsync/internal/metastore"
	"github.com/surfsync/surfsync/internal/metrics"
	"github.com/surfsync/surfsync/internal/rpc/httptransport"
)

// Server is the supervised BlockStore+MetaStore process.
type Server struct {
	*suture.Supervisor
	addr    string
	blocks  *blockstore.Store
	files   *metastore.Store
	metrics *metrics.Registry
}

// New opens an in-memory BlockStore and an empty MetaStore and prepares
// the supervised HTTP listener. No state survives a restart: this is
// intentional, matching the protocol's server contract.
func New(ctx context.Context, addr string) (*Server, error) {
	blocks, err := blockstore.OpenMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening block store: %w", err)
	}

	s := &Server{
		Supervisor: suture.New("surfsync.server", suture.Spec{
			EventHook: func(e suture.Event) {
				logger.DefaultLogger.Warnf("server supervisor: %s", e.String())
			},
		}),
		addr:    addr,
		blocks:  blocks,
		files:   metastore.New(0),
		metrics: metrics.New(),
	}

	s.Add(&httpService{addr: addr, handler: httptransport.NewServer(s.blocks, s.files, s.metrics)})
	return s, nil
}

// Run blocks serving RPCs until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx)
}

func (s *Server) Close() error {
	return s.blocks.Close()
}

// httpService adapts an http.Handler to suture's Service interface: Serve
// listens until ctx is cancelled, then shuts the listener down cleanly.
type httpService struct {
	addr    string
	handler http.Handler
}

func (h *httpService) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: h.addr, Handler: h.handler}

	errCh := make(chan error, 1)
	go func() {
		logger.DefaultLogger.Infof("listening on %s", h.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
