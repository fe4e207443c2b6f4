package api

import (
	"context"
	"fmt"
	"net/http"

	"folio/models"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	if err := models.Validate(creds); err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, c.endpoints.Login(), creds, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: response carries no token")
	}
	return &resp, nil
}

// SendContact submits the public contact form.
func (c *Client) SendContact(ctx context.Context, msg models.ContactMessage) (*models.MessageResponse, error) {
	if err := models.Validate(msg); err != nil {
		return nil, err
	}

	var resp models.MessageResponse
	if err := c.doJSON(ctx, "send contact", http.MethodPost, c.endpoints.Contact(), msg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks that the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, "ping", http.MethodGet, c.endpoints.Health(), nil, nil)
}
