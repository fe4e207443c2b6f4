package session

import (
	"context"
	"fmt"

	"folio/models"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
}

// Login authenticates against the backend and stores the issued token.
// It returns the backend's welcome message. On failure the slot is left as it was.
func Login(ctx context.Context, auth Authenticator, store TokenStore, creds models.Credentials) (string, error) {
	resp, err := auth.Login(ctx, creds)
	if err != nil {
		return "", err
	}

	if err := store.Save(resp.Token); err != nil {
		return "", fmt.Errorf("login succeeded but the token could not be stored: %w", err)
	}
	return resp.Message, nil
}

// Logout ends the local session. The backend is not contacted.
func Logout(store TokenStore) error {
	return store.Clear()
}
