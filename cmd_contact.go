package main

import (
	"fmt"

	"folio/models"

	"github.com/spf13/cobra"
)

func (a *app) contactCmd() *cobra.Command {
	var msg models.ContactMessage

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message through the contact form",
		Example: `  folio contact --name "Ada" --email ada@example.com --message "Hello there"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.SendContact(cmd.Context(), msg)
			if err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}

			reply := resp.Message
			if reply == "" {
				reply = "Message sent."
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&msg.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&msg.Email, "email", "", "Your email address")
	cmd.Flags().StringVar(&msg.Phone, "phone", "", "Phone number (optional)")
	cmd.Flags().StringVar(&msg.Message, "message", "", "Message body")

	return cmd
}
