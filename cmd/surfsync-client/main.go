// Command surfsync-client reconciles a local directory against a
// surfsync-server. Each invocation performs exactly one sync pass by
// default; --watch repeats the pass on an interval until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/surfsync/surfsync/internal/ignore"
	"github.com/surfsync/surfsync/internal/logger"
	"github.com/surfsync/surfsync/internal/rpc/httptransport"
	"github.com/surfsync/surfsync/internal/syncclient"
	"github.com/surfsync/surfsync/internal/syncconfig"
)

type CLI struct {
	Config   string        `required:"" help:"Path to the client's YAML config file."`
	Watch    bool          `help:"Repeat the sync pass on an interval instead of running once."`
	Interval time.Duration `default:"30s" help:"Interval between passes when --watch is set."`
}

func (c *CLI) Run() error {
	cfg, err := syncconfig.Load(c.Config)
	if err != nil {
		return err
	}
	if cfg.BaseDir == "" {
		return fmt.Errorf("base_dir is required for surfsync-client")
	}

	var matcher *ignore.Matcher
	if cfg.IgnoreFile != "" {
		path := cfg.IgnoreFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.BaseDir, path)
		}
		matcher, err = ignore.Load(path)
		if err != nil {
			return fmt.Errorf("loading ignore file: %w", err)
		}
	}

	client := httptransport.NewClient(serverURL(cfg.ServerAddr), nil)
	sc := syncclient.New(cfg.BaseDir, cfg.BlockSize, client, matcher)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}

	if !c.Watch {
		return sc.Sync(ctx)
	}

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		if err := sc.Sync(ctx); err != nil {
			logger.DefaultLogger.Errorf("sync pass failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// serverURL turns a bare host:port server_addr (the form the server binds
// to) into an http:// URL; a value that already names a scheme is passed
// through unchanged.
func serverURL(addr string) string {
	if strings.Contains(addr, "://") {
		return addr
	}
	return "http://" + addr
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)
	err := cli.Run()
	if err != nil {
		logger.DefaultLogger.Errorf("surfsync-client: %v", err)
	}
	kctx.FatalIfErrorf(err)
}
