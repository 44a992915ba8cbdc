package openapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"roost.dev/pkg/utils/context"
)

// HealthOutput is the body of the health endpoint.
type HealthOutput struct {
	Body struct {
		Status  string `json:"status" doc:"always ok while the relay is serving"`
		Clients int64  `json:"clients" doc:"currently open websocket sessions"`
	}
}

// RegisterHealth wires the liveness endpoint.
func (x *Operations) RegisterHealth(api huma.API) {
	huma.Register(
		api, huma.Operation{
			OperationID: "health",
			Method:      http.MethodGet,
			Path:        "/health",
			Summary:     "Liveness check",
			Tags:        []string{"relay"},
		}, func(c context.T, input *struct{}) (
			output *HealthOutput, err error,
		) {
			output = &HealthOutput{}
			output.Body.Status = "ok"
			output.Body.Clients = x.Clients().Value()
			return
		},
	)
}
