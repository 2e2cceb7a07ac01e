package rest

import (
	"context"
	"net/http"

	"feedctl/internal/model"
	"feedctl/internal/service"
)

func (c *Client) Login(ctx context.Context, req service.LoginRequest) (service.LoginResult, error) {
	var out loginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.loginPath,
		in:     loginBody{Email: req.Email, Password: req.Password},
		out:    &out,
	})
	if err != nil {
		return service.LoginResult{}, err
	}
	return service.LoginResult{
		AccessToken: out.token(),
		Profile:     out.profile(),
	}, nil
}

func (c *Client) Register(ctx context.Context, req service.RegisterRequest) (model.Profile, error) {
	var out profileDTO
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.registerPath,
		in: registerBody{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Avatar:   req.Avatar,
		},
		out: &out,
	})
	if err != nil {
		return model.Profile{}, err
	}
	return out.toModel(), nil
}
