package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/mindump-backend/internal/auth"
)

func newTokenCmd(load loader) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id",
		Long:  "Signs an access token with the configured secret. Meant for local testing; production tokens come from the identity service.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("--user must be a UUID: %w", err)
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive")
			}

			e, err := load()
			if err != nil {
				return err
			}
			token, err := auth.NewJWTManager(e.cfg.Auth.JWTSecret, e.cfg.Auth.JWTIssuer).GenerateAccessToken(userID, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (UUID)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
