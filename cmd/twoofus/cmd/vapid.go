package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/twoofus/server/internal/service/push"
)

func VapidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vapid",
		Short: "Web Push key helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate a VAPID key pair for .env",
		RunE: func(cmd *cobra.Command, args []string) error {
			public, private, err := push.GenerateKeys()
			if err != nil {
				return fail("generate keys: %v", err)
			}
			color.Green("✓ Generated VAPID keys")
			fmt.Printf("VAPID_PUBLIC_KEY=%s\n", public)
			fmt.Printf("VAPID_PRIVATE_KEY=%s\n", private)
			return nil
		},
	})

	return cmd
}
