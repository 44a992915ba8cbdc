package openapi

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/version"
)

// StatsOutput is the body of the stats endpoint.
type StatsOutput struct {
	Body struct {
		Name          string `json:"relay_name" doc:"relay name"`
		Version       string `json:"version" doc:"relay software version"`
		TotalEvents   int64  `json:"total_events" doc:"number of events in the store"`
		Clients       int64  `json:"connected_clients" doc:"currently open websocket sessions"`
		UptimeSeconds int64  `json:"uptime_seconds" doc:"seconds since the relay started"`
		Nips          []int  `json:"supported_nips" doc:"NIPs this relay implements"`
		OwnerOnly     bool   `json:"owner_only" doc:"whether writes are restricted to the owner"`
	}
}

// RegisterStats wires the relay stats endpoint.
func (x *Operations) RegisterStats(api huma.API) {
	huma.Register(
		api, huma.Operation{
			OperationID: "stats",
			Method:      http.MethodGet,
			Path:        "/relay/stats",
			Summary:     "Relay statistics",
			Description: "Event store totals and live connection counts.",
			Tags:        []string{"relay"},
		}, func(c context.T, input *struct{}) (
			output *StatsOutput, err error,
		) {
			output = &StatsOutput{}
			output.Body.Name = x.Config().Name
			output.Body.Version = version.V
			var n int64
			if n, err = x.Storage().TotalEvents(); chk.E(err) {
				return nil, huma.Error500InternalServerError("store unavailable")
			}
			output.Body.TotalEvents = n
			output.Body.Clients = x.Clients().Value()
			output.Body.UptimeSeconds = int64(
				time.Since(x.started) / time.Second,
			)
			output.Body.Nips = x.SupportedNIPs()
			output.Body.OwnerOnly = x.Config().OwnerOnly
			return
		},
	)
}
