package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/lumenode/internal/link"
)

// LinkStatusResponse reports the current link state.
type LinkStatusResponse struct {
	Body struct {
		Connected bool   `json:"connected" example:"true" doc:"Whether the serial link is open"`
		Port      string `json:"port" example:"/dev/ttyUSB0" doc:"Configured serial port"`
		Baud      int    `json:"baud" example:"9600" doc:"Configured baud rate"`
	}
}

// LinkConnectRequest optionally overrides the stored connection parameters.
type LinkConnectRequest struct {
	Body struct {
		Port string `json:"port,omitempty" example:"/dev/ttyUSB0" doc:"Serial port; empty keeps the current setting"`
		Baud int    `json:"baud,omitempty" example:"9600" doc:"Baud rate; zero keeps the current setting"`
	}
}

// LinkTimeoutRequest toggles the firmware's inactivity timeout.
type LinkTimeoutRequest struct {
	Body struct {
		Enabled bool `json:"enabled" example:"false" doc:"Whether the device should blank itself after inactivity"`
	}
}

// PortListResponse lists discovered serial ports.
type PortListResponse struct {
	Body struct {
		Ports []link.PortInfo `json:"ports" doc:"Available serial ports"`
	}
}

func (s *Server) linkStatus() *LinkStatusResponse {
	resp := &LinkStatusResponse{}
	port, baud := s.options.Link.Settings()
	resp.Body.Connected = s.options.Link.IsOpen()
	resp.Body.Port = port
	resp.Body.Baud = baud
	return resp
}

// registerLinkRoutes registers link and serial port endpoints.
func (s *Server) registerLinkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-link-status",
		Method:      http.MethodGet,
		Path:        "/api/link",
		Summary:     "Link Status",
		Description: "Get the serial link state and connection parameters",
		Tags:        []string{"link"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*LinkStatusResponse, error) {
		return s.linkStatus(), nil
	})

	// Opening the port never errors to the caller; clients read the
	// returned state, same contract the link itself has.
	huma.Register(s.api, huma.Operation{
		OperationID: "connect-link",
		Method:      http.MethodPost,
		Path:        "/api/link/connect",
		Summary:     "Connect",
		Description: "Open the serial link, optionally with new parameters. Check the returned state; a failed open leaves the link closed.",
		Tags:        []string{"link"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *LinkConnectRequest) (*LinkStatusResponse, error) {
		s.options.Link.Connect(input.Body.Port, input.Body.Baud)
		return s.linkStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "disconnect-link",
		Method:      http.MethodPost,
		Path:        "/api/link/disconnect",
		Summary:     "Disconnect",
		Description: "Close the serial link",
		Tags:        []string{"link"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*LinkStatusResponse, error) {
		s.options.Link.Disconnect()
		return s.linkStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "reconnect-link",
		Method:      http.MethodPost,
		Path:        "/api/link/reconnect",
		Summary:     "Reconnect",
		Description: "Cycle the serial link, optionally with new parameters. Blocks for the settle delay.",
		Tags:        []string{"link"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *LinkConnectRequest) (*LinkStatusResponse, error) {
		s.options.Link.Reconnect(input.Body.Port, input.Body.Baud)
		return s.linkStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-link-timeout",
		Method:      http.MethodPost,
		Path:        "/api/link/timeout",
		Summary:     "Inactivity Timeout",
		Description: "Enable or disable the device's inactivity timeout. The coordinator manages this during mode transitions; this endpoint is for manual control.",
		Tags:        []string{"link"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *LinkTimeoutRequest) (*LinkStatusResponse, error) {
		s.options.Link.SendTimeout(input.Body.Enabled)
		return s.linkStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-ports",
		Method:      http.MethodGet,
		Path:        "/api/ports",
		Summary:     "List Ports",
		Description: "Enumerate serial ports present on the system",
		Tags:        []string{"link"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*PortListResponse, error) {
		list := s.options.ListPorts
		if list == nil {
			list = link.Ports
		}
		ports, err := list()
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to enumerate serial ports", err)
		}
		resp := &PortListResponse{}
		resp.Body.Ports = ports
		return resp, nil
	})
}
