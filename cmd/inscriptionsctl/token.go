package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"membershipevents/internal/adapters/auth"
)

var (
	tokenUser   string
	tokenEmail  string
	tokenRoles  []string
	tokenExpiry time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed access token",
	Long: `Issue a bearer token signed with JWT_SECRET, for operators and local testing.

Examples:
  inscriptionsctl token --user 7f9c... --email ana@example.org
  inscriptionsctl token --user 7f9c... --role admin --expiry 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUser == "" {
			return errors.New("--user is required")
		}
		if tokenExpiry <= 0 {
			return errors.New("--expiry must be positive")
		}
		token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(tokenUser, tokenEmail, tokenRoles, tokenExpiry)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user ID placed in the subject claim")
	tokenCmd.Flags().StringVarP(&tokenEmail, "email", "e", "", "email claim")
	tokenCmd.Flags().StringArrayVarP(&tokenRoles, "role", "r", nil, "role claim (repeatable, e.g. --role admin)")
	tokenCmd.Flags().DurationVar(&tokenExpiry, "expiry", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
