package apiclient

import (
	"context"
	"net/http"

	"saborconquista/internal/model"
)

// Login calls POST /api/auth/login.
func (c *Client) Login(ctx context.Context, email, senha string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login", nil, model.LoginRequest{Email: email, Senha: senha}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register calls POST /api/auth/register.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Ativo = true
	var resp model.AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/api/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
