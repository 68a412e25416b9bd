package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"scanflow/internal/domain/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		deviceID string
		userID   string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a scanning device",
		Long:  `Signs a device token with JWT_SECRET. The token is printed on the first line, its expiry on the second.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET not set")
			}

			cfg := auth.DefaultJWTConfig(secret)
			if ttl > 0 {
				cfg.TokenTTL = ttl
			}

			token, expires, err := auth.NewJWTService(cfg).GenerateDeviceToken(deviceID, userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.OutOrStdout(), expires.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceID, "device", "", "device id (required)")
	cmd.Flags().StringVar(&userID, "user", "", "operator user id")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to the server setting")
	_ = cmd.MarkFlagRequired("device")
	return cmd
}
