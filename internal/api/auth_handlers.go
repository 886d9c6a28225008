package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cinewave/cinewave/internal/domain"
	"github.com/cinewave/cinewave/internal/service"
	"github.com/cinewave/cinewave/internal/validation"
)

var validate = validation.New()

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/session",
		Summary:     "Current session",
		Description: "Returns the identity state of the session",
		Tags:        []string{"Authentication"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Simulated login. A known email reuses its identity; a new one is added to the roster.",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register",
		Description: "Creates a new identity and logs it in",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Log out",
		Description: "Ends the session. Calling it while anonymous is a no-op.",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/auth/profile",
		Summary:     "Update profile",
		Description: "Updates the display name of the current user. The email is immutable.",
		Tags:        []string{"Authentication"},
	}, s.handleUpdateProfile)
}

// === DTOs ===

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" required:"false" doc:"User email"`
	Password string `json:"password" required:"false" doc:"Any password of at least 6 characters"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Name            string `json:"name" required:"false" doc:"Display name"`
	Email           string `json:"email" required:"false" doc:"User email"`
	Password        string `json:"password" required:"false" doc:"Password"`
	ConfirmPassword string `json:"confirmPassword" required:"false" validate:"eqfield=Password" doc:"Password confirmation"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// ProfileUpdateRequest is the request body for profile updates.
type ProfileUpdateRequest struct {
	Name *string `json:"name,omitempty" doc:"New display name"`
}

// ProfileUpdateInput wraps the profile request for Huma.
type ProfileUpdateInput struct {
	Body ProfileUpdateRequest
}

// AuthOutput wraps the identity state for Huma.
type AuthOutput struct {
	Body domain.AuthState
}

// === Handlers ===

func (s *Server) handleGetSession(_ context.Context, _ *struct{}) (*AuthOutput, error) {
	return &AuthOutput{Body: s.services.Auth.State()}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	if _, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}); err != nil {
		return nil, err
	}
	return &AuthOutput{Body: s.services.Auth.State()}, nil
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	if err := validate.Validate(input.Body); err != nil {
		return nil, err
	}

	if _, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Name:     input.Body.Name,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}); err != nil {
		return nil, err
	}
	return &AuthOutput{Body: s.services.Auth.State()}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*AuthOutput, error) {
	if err := s.services.Auth.Logout(ctx); err != nil {
		return nil, err
	}
	return &AuthOutput{Body: s.services.Auth.State()}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *ProfileUpdateInput) (*AuthOutput, error) {
	if _, err := s.services.Auth.UpdateProfile(ctx, service.ProfileRequest{Name: input.Body.Name}); err != nil {
		return nil, err
	}
	return &AuthOutput{Body: s.services.Auth.State()}, nil
}
