package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// EngineStatusResponse reports one engine's run state.
type EngineStatusResponse struct {
	Body struct {
		Engine  string `json:"engine" example:"audio" doc:"Engine name"`
		Running bool   `json:"running" example:"true" doc:"Whether the engine is running"`
	}
}

// SnapshotRequest restricts screen sampling to a rectangle.
type SnapshotRequest struct {
	Body struct {
		X      int `json:"x" example:"10" doc:"Left edge in screen coordinates"`
		Y      int `json:"y" example:"10" doc:"Top edge in screen coordinates"`
		Width  int `json:"width" minimum:"1" example:"100" doc:"Region width"`
		Height int `json:"height" minimum:"1" example:"80" doc:"Region height"`
	}
}

// ScreenStatusResponse reports the screen engine's state and settings.
type ScreenStatusResponse struct {
	Body struct {
		Running  bool `json:"running" example:"false" doc:"Whether the engine is running"`
		FPS      int  `json:"fps" example:"10" doc:"Sampling rate"`
		Snapshot *struct {
			X      int `json:"x"`
			Y      int `json:"y"`
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"snapshot,omitempty" doc:"Configured sampling region, absent for full screen"`
	}
}

// FPSRequest changes the screen sampling rate.
type FPSRequest struct {
	Body struct {
		FPS int `json:"fps" minimum:"1" maximum:"60" example:"15" doc:"Frames per second"`
	}
}

func (s *Server) audioStatus() *EngineStatusResponse {
	resp := &EngineStatusResponse{}
	resp.Body.Engine = "audio"
	resp.Body.Running = s.options.Audio.IsRunning()
	return resp
}

func (s *Server) screenStatus() *ScreenStatusResponse {
	resp := &ScreenStatusResponse{}
	resp.Body.Running = s.options.Screen.IsRunning()
	resp.Body.FPS = s.options.Screen.FPS()
	if r := s.options.Screen.Snapshot(); r != nil {
		resp.Body.Snapshot = &struct {
			X      int `json:"x"`
			Y      int `json:"y"`
			Width  int `json:"width"`
			Height int `json:"height"`
		}{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
	}
	return resp
}

// registerEngineRoutes registers the reactive engine endpoints.
func (s *Server) registerEngineRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-audio-status",
		Method:      http.MethodGet,
		Path:        "/api/audio",
		Summary:     "Audio Status",
		Description: "Get the audio engine's run state",
		Tags:        []string{"audio"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*EngineStatusResponse, error) {
		return s.audioStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "start-audio",
		Method:      http.MethodPost,
		Path:        "/api/audio/start",
		Summary:     "Start Audio",
		Description: "Switch to audio-reactive mode",
		Tags:        []string{"audio"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*EngineStatusResponse, error) {
		if err := s.options.Modes.StartAudio(); err != nil {
			return nil, huma.Error500InternalServerError("Failed to start audio engine", err)
		}
		return s.audioStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-audio",
		Method:      http.MethodPost,
		Path:        "/api/audio/stop",
		Summary:     "Stop Audio",
		Description: "Stop the audio engine",
		Tags:        []string{"audio"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*EngineStatusResponse, error) {
		s.options.Modes.StopAudio()
		return s.audioStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-screen-status",
		Method:      http.MethodGet,
		Path:        "/api/screen",
		Summary:     "Screen Status",
		Description: "Get the screen engine's run state and settings",
		Tags:        []string{"screen"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*ScreenStatusResponse, error) {
		return s.screenStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "start-screen",
		Method:      http.MethodPost,
		Path:        "/api/screen/start",
		Summary:     "Start Screen",
		Description: "Switch to screen-reactive mode",
		Tags:        []string{"screen"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*ScreenStatusResponse, error) {
		s.options.Modes.StartScreen()
		return s.screenStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-screen",
		Method:      http.MethodPost,
		Path:        "/api/screen/stop",
		Summary:     "Stop Screen",
		Description: "Stop the screen engine",
		Tags:        []string{"screen"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*ScreenStatusResponse, error) {
		s.options.Modes.StopScreen()
		return s.screenStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "select-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/screen/snapshot",
		Summary:     "Select Snapshot",
		Description: "Restrict screen sampling to a rectangle; applies to the next capture",
		Tags:        []string{"screen"},
		Errors:      []int{401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *SnapshotRequest) (*ScreenStatusResponse, error) {
		s.options.Screen.SelectSnapshot(input.Body.X, input.Body.Y, input.Body.Width, input.Body.Height)
		return s.screenStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "clear-snapshot",
		Method:      http.MethodDelete,
		Path:        "/api/screen/snapshot",
		Summary:     "Clear Snapshot",
		Description: "Return screen sampling to the full screen",
		Tags:        []string{"screen"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*ScreenStatusResponse, error) {
		s.options.Screen.ClearSnapshot()
		return s.screenStatus(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update-fps",
		Method:      http.MethodPut,
		Path:        "/api/screen/fps",
		Summary:     "Update FPS",
		Description: "Change the screen sampling rate; takes effect on the next loop iteration",
		Tags:        []string{"screen"},
		Errors:      []int{401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *FPSRequest) (*ScreenStatusResponse, error) {
		s.options.Screen.UpdateFPS(input.Body.FPS)
		return s.screenStatus(), nil
	})
}
