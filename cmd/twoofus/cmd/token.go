package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/twoofus/server/internal/service"
)

func TokenCmd() *cobra.Command {
	var expiry time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token signed with AUTH_JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("AUTH_JWT_SECRET")
			if secret == "" {
				return fail("AUTH_JWT_SECRET is not set")
			}

			token, expiresAt, err := service.NewAuthService(secret, expiry).GenerateJWT(args[0])
			if err != nil {
				return fail("sign token: %v", err)
			}
			faint.Printf("expires %s\n", expiresAt.Format(time.RFC3339))
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "token lifetime")
	return cmd
}
