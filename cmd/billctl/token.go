package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wattwise/bill-ingest-service/internal/auth"
)

// newTokenCmd issues an API token signed with JWT_SECRET
func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.Init(os.Getenv("JWT_SECRET")); err != nil {
				return err
			}
			token, err := auth.GenerateToken(userID, email, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user or client application id")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().StringVar(&role, "role", "operator", "role claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
