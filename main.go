// Package main is a personal nostr relay: a websocket event store for one
// operator's events with the standard protocol surface. Configuration is
// via environment variables or an optional .env file.
package main

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"roost.dev/pkg/app/config"
	"roost.dev/pkg/app/relay"
	"roost.dev/pkg/database"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/interrupt"
	"roost.dev/pkg/utils/log"
	"roost.dev/pkg/utils/lol"
	"roost.dev/pkg/version"
)

// SweepInterval is how often the expiration sweeper runs.
const SweepInterval = 10 * time.Minute

func main() {
	var err error
	var cfg *config.C
	if cfg, err = config.New(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(1)
	}
	if config.HelpRequested() {
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if config.GetEnv() {
		config.PrintEnv(cfg, os.Stdout)
		os.Exit(0)
	}
	lol.SetLogLevel(cfg.LogLevel)
	log.I.F("starting %s %s", version.Name, version.V)
	if cfg.Pprof {
		defer profile.Start(profile.MemProfile).Stop()
		go func() {
			chk.E(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}
	c, cancel := context.Cancel(context.Bg())
	var storage *database.D
	if storage, err = database.New(c, cfg.DataDir); chk.E(err) {
		os.Exit(1)
	}
	server := relay.NewServer(c, cancel, cfg, storage)
	interrupt.AddHandler(func() { server.Shutdown() })
	var g errgroup.Group
	g.Go(
		func() error {
			// the sweeper watches this context, so a server that cannot
			// start releases the whole group
			defer cancel()
			return server.Start()
		},
	)
	g.Go(
		func() error {
			storage.SweepExpired(c, SweepInterval)
			return nil
		},
	)
	if err = g.Wait(); err != nil {
		log.F.F("server terminated: %v", err)
		if errors.Is(err, relay.ErrBind) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
