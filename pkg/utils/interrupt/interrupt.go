// Package interrupt registers shutdown handlers to run when the process
// receives an interrupt or termination signal.
package interrupt

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"roost.dev/pkg/utils/log"
)

var (
	mx       sync.Mutex
	handlers []func()
	started  bool
)

// AddHandler registers a function to run once on SIGINT or SIGTERM.
// Handlers run in registration order.
func AddHandler(f func()) {
	mx.Lock()
	defer mx.Unlock()
	handlers = append(handlers, f)
	if !started {
		started = true
		go listen()
	}
}

func listen() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	log.W.F("received %v, shutting down", s)
	mx.Lock()
	hs := make([]func(), len(handlers))
	copy(hs, handlers)
	mx.Unlock()
	for _, h := range hs {
		h()
	}
}
