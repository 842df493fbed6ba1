package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nikolayk812/storefront-cart/internal/port"
)

type loginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponseDTO struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type registerRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileDTO struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Login exchanges credentials for a bearer token and starts sending it.
func (c *Client) Login(ctx context.Context, username, password string) (port.Identity, error) {
	res, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequestDTO{Username: username, Password: password},
	})
	if err != nil {
		return port.Identity{}, fmt.Errorf("POST /auth/login: %w", err)
	}

	dto, err := decode[authResponseDTO](res)
	if err != nil {
		return port.Identity{}, fmt.Errorf("decode: %w", err)
	}

	subject, expiresAt := tokenClaims(dto.Token)
	if dto.Username == "" {
		dto.Username = subject
	}
	if dto.Username == "" {
		dto.Username = username
	}

	c.SetToken(dto.Token)

	return port.Identity{
		Username:  dto.Username,
		Role:      dto.Role,
		Token:     dto.Token,
		ExpiresAt: expiresAt,
	}, nil
}

// Register creates an account. Role defaults to USER.
func (c *Client) Register(ctx context.Context, username, email, password, role string) error {
	if role == "" {
		role = "USER"
	}

	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		query:  url.Values{"role": {strings.ToUpper(role)}},
		body:   registerRequestDTO{Username: username, Email: email, Password: password},
	})
	if err != nil {
		return fmt.Errorf("POST /auth/register: %w", err)
	}

	return nil
}

// Logout drops the bearer credential. The backend keeps no session.
func (c *Client) Logout() {
	c.SetToken("")
}

func (c *Client) Me(ctx context.Context) (port.Identity, error) {
	res, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me"})
	if err != nil {
		return port.Identity{}, fmt.Errorf("GET /auth/me: %w", err)
	}

	dto, err := decode[profileDTO](res)
	if err != nil {
		return port.Identity{}, fmt.Errorf("decode: %w", err)
	}

	return port.Identity{
		Username: dto.Username,
		Email:    dto.Email,
		Role:     dto.Role,
		Token:    c.bearer(),
	}, nil
}

func (c *Client) UpdateMe(ctx context.Context, identity port.Identity) (port.Identity, error) {
	res, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/auth/me",
		body:   profileDTO{Username: identity.Username, Email: identity.Email},
	})
	if err != nil {
		return port.Identity{}, fmt.Errorf("PUT /auth/me: %w", err)
	}

	if len(res.body) == 0 {
		identity.Token = c.bearer()
		return identity, nil
	}

	dto, err := decode[profileDTO](res)
	if err != nil {
		return port.Identity{}, fmt.Errorf("decode: %w", err)
	}

	return port.Identity{Username: dto.Username, Email: dto.Email, Role: dto.Role, Token: c.bearer()}, nil
}
