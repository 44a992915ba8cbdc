// Package openapi serves the relay's HTTP side endpoints, documented
// through an OpenAPI schema.
package openapi

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"roost.dev/pkg/interfaces/server"
	"roost.dev/pkg/version"
)

// Operations carries the server handle into the registered endpoint
// methods.
type Operations struct {
	server.I
	started time.Time
}

// New registers the HTTP API operations on the router.
func New(s server.I, router *chi.Mux) {
	api := humachi.New(
		router, huma.DefaultConfig(version.Name, version.V),
	)
	huma.AutoRegister(api, &Operations{I: s, started: time.Now()})
}
