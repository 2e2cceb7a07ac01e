package service

import (
	"context"
	"fmt"

	"feedctl/internal/model"
	"feedctl/pkg/logger"
)

//go:generate mockgen -source=auth.go -destination=./auth_mock.go -package=service

type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) (model.Profile, error)
}

// TokenStore persists the session between runs. It is the write side of
// SessionProvider.
type TokenStore interface {
	SessionProvider
	Session(ctx context.Context) (model.Session, error)
	SaveSession(ctx context.Context, s model.Session) error
	Clear(ctx context.Context) error
}

type AuthService struct {
	api    AuthAPI
	tokens TokenStore
}

func NewAuthService(api AuthAPI, tokens TokenStore) *AuthService {
	return &AuthService{
		api:    api,
		tokens: tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (model.Profile, error) {
	if err := validate.Struct(req); err != nil {
		return model.Profile{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	profile, err := s.api.Register(ctx, req)
	if err != nil {
		return model.Profile{}, fmt.Errorf("register: %w", err)
	}
	logger.FromContext(ctx).Info("user registered", "name", profile.Name)
	return profile, nil
}

// Login exchanges credentials for an access token and stores it.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (model.Profile, error) {
	if err := validate.Struct(req); err != nil {
		return model.Profile{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	res, err := s.api.Login(ctx, req)
	if err != nil {
		return model.Profile{}, fmt.Errorf("login: %w", err)
	}
	if res.AccessToken == "" {
		return model.Profile{}, fmt.Errorf("login failed: %w: no access token", ErrInvalidResponse)
	}

	if err := s.tokens.SaveSession(ctx, model.Session{
		AccessToken: res.AccessToken,
		Profile:     res.Profile,
	}); err != nil {
		return model.Profile{}, fmt.Errorf("save session: %w", err)
	}
	logger.FromContext(ctx).Info("logged in", "name", res.Profile.Name)
	return res.Profile, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Whoami returns the profile of the stored session, or ErrMissingCredential.
func (s *AuthService) Whoami(ctx context.Context) (model.Profile, error) {
	sess, err := s.tokens.Session(ctx)
	if err != nil {
		return model.Profile{}, fmt.Errorf("read session: %w", err)
	}
	if !sess.Authenticated() {
		return model.Profile{}, ErrMissingCredential
	}
	return sess.Profile, nil
}
