package main

import (
	"fmt"

	"folio/middleware"
	"folio/models"
	"folio/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) loginCmd() *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as the portfolio admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := session.Login(cmd.Context(), a.client, a.tokens, creds)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			a.logger.Info("logged in", zap.String("email", creds.Email))
			if message == "" {
				message = "Login successful."
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "Admin email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the local admin session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Logout(a.tokens); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// statusCmd reports the backend origin, whether it answers and whether a
// session token is stored. The token itself is never checked.
func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend and session status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			backend := "reachable"
			if err := a.client.Ping(cmd.Context()); err != nil {
				a.logger.Debug("ping failed", zap.Error(err))
				backend = "unreachable"
			}

			sessionState := "logged in"
			if !middleware.NewGuard(a.tokens, "").Check().Allowed() {
				sessionState = "logged out"
			}

			fmt.Fprintf(out, "Backend: %s (%s)\n", a.client.Endpoints().Base(), backend)
			fmt.Fprintf(out, "Session: %s\n", sessionState)
			return nil
		},
	}
}
