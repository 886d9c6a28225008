package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cinewave/cinewave/internal/domain"
)

func (s *Server) registerThemeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTheme",
		Method:      http.MethodGet,
		Path:        "/api/v1/theme",
		Summary:     "Get theme",
		Tags:        []string{"Theme"},
	}, s.handleGetTheme)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleTheme",
		Method:      http.MethodPost,
		Path:        "/api/v1/theme/toggle",
		Summary:     "Toggle theme",
		Description: "Flips between dark and light mode",
		Tags:        []string{"Theme"},
	}, s.handleToggleTheme)

	huma.Register(s.api, huma.Operation{
		OperationID: "setTheme",
		Method:      http.MethodPut,
		Path:        "/api/v1/theme",
		Summary:     "Set theme",
		Description: "Sets the display mode explicitly",
		Tags:        []string{"Theme"},
	}, s.handleSetTheme)
}

// SetThemeInput carries the requested mode.
type SetThemeInput struct {
	Body struct {
		Mode string `json:"mode" required:"false" doc:"dark or light"`
	}
}

// ThemeOutput wraps the theme state for Huma.
type ThemeOutput struct {
	Body domain.ThemeState
}

func (s *Server) handleGetTheme(_ context.Context, _ *struct{}) (*ThemeOutput, error) {
	return &ThemeOutput{Body: s.services.Theme.State()}, nil
}

func (s *Server) handleToggleTheme(ctx context.Context, _ *struct{}) (*ThemeOutput, error) {
	return &ThemeOutput{Body: s.services.Theme.Toggle(ctx)}, nil
}

func (s *Server) handleSetTheme(ctx context.Context, input *SetThemeInput) (*ThemeOutput, error) {
	state, err := s.services.Theme.SetExplicit(ctx, input.Body.Mode)
	if err != nil {
		return nil, err
	}
	return &ThemeOutput{Body: state}, nil
}
