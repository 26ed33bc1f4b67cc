// Command surfsync-server runs the BlockStore+MetaStore process: an
// in-memory, stateless-across-restarts server exposing the five SurfSync
// RPCs over HTTP/JSON.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/surfsync/surfsync/internal/logger"
	"github.com/surfsync/surfsync/internal/server"
	"github.com/surfsync/surfsync/internal/syncconfig"
)

type CLI struct {
	Config string `required:"" help:"Path to the server's YAML config file."`
}

func (c *CLI) Run() error {
	cfg, err := syncconfig.Load(c.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	srv, err := server.New(ctx, cfg.ServerAddr)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Run(ctx)
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)
	err := cli.Run()
	if err != nil {
		logger.DefaultLogger.Errorf("surfsync-server: %v", err)
	}
	kctx.FatalIfErrorf(err)
}
