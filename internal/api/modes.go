package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/lumenode/internal/protocol"
)

// ModeStatusResponse reports the coordinator's active mode.
type ModeStatusResponse struct {
	Body struct {
		Mode   string `json:"mode" example:"audio" doc:"Active mode: off, solid, pattern, audio, screen"`
		Detail string `json:"detail,omitempty" example:"Breathing" doc:"Pattern name when mode is pattern"`
	}
}

// SolidColorRequest sets a static color.
type SolidColorRequest struct {
	Body struct {
		R int `json:"r" minimum:"0" maximum:"255" example:"255" doc:"Red channel"`
		G int `json:"g" minimum:"0" maximum:"255" example:"128" doc:"Green channel"`
		B int `json:"b" minimum:"0" maximum:"255" example:"0" doc:"Blue channel"`
	}
}

// PatternRequest activates a firmware animation pattern.
type PatternRequest struct {
	Body struct {
		Name string `json:"name" example:"Breathing" doc:"Pattern name as the firmware knows it"`
	}
}

// PatternListResponse lists the accepted pattern names.
type PatternListResponse struct {
	Body struct {
		Patterns []string `json:"patterns" doc:"Pattern names in firmware code order"`
	}
}

func (s *Server) modeStatus() *ModeStatusResponse {
	resp := &ModeStatusResponse{}
	resp.Body.Mode, resp.Body.Detail = s.options.Modes.Mode()
	return resp
}

// registerModeRoutes registers mode transition endpoints.
func (s *Server) registerModeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-mode",
		Method:      http.MethodGet,
		Path:        "/api/mode",
		Summary:     "Mode Status",
		Description: "Get the currently active mode",
		Tags:        []string{"modes"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*ModeStatusResponse, error) {
		return s.modeStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-solid-color",
		Method:      http.MethodPost,
		Path:        "/api/mode/solid",
		Summary:     "Solid Color",
		Description: "Switch to static color mode with the given color",
		Tags:        []string{"modes"},
		Errors:      []int{401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *SolidColorRequest) (*ModeStatusResponse, error) {
		c := protocol.NewColor(input.Body.R, input.Body.G, input.Body.B)
		s.options.Modes.SetSolid(c.R, c.G, c.B)
		return s.modeStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-pattern",
		Method:      http.MethodPost,
		Path:        "/api/mode/pattern",
		Summary:     "Pattern",
		Description: "Switch to a firmware animation pattern",
		Tags:        []string{"modes"},
		Errors:      []int{400, 401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *PatternRequest) (*ModeStatusResponse, error) {
		if err := s.options.Modes.SetPattern(input.Body.Name); err != nil {
			return nil, huma.Error400BadRequest("Unknown pattern name", err)
		}
		return s.modeStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-patterns",
		Method:      http.MethodGet,
		Path:        "/api/mode/patterns",
		Summary:     "List Patterns",
		Description: "List the pattern names the firmware accepts",
		Tags:        []string{"modes"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*PatternListResponse, error) {
		resp := &PatternListResponse{}
		resp.Body.Patterns = protocol.ModeNames()
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "deactivate",
		Method:      http.MethodPost,
		Path:        "/api/mode/off",
		Summary:     "Off",
		Description: "Switch the device off and stop any running engine",
		Tags:        []string{"modes"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*ModeStatusResponse, error) {
		s.options.Modes.Deactivate()
		return s.modeStatus(), nil
	})
}
