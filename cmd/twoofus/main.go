package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/twoofus/server/cmd/twoofus/cmd"
	"github.com/twoofus/server/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "twoofus",
		Short: "Operations tools for The Two of Us",
		Long: `Operations tools for The Two of Us.

  $ twoofus migrate up                      # Apply pending migrations
  $ twoofus questions sync                  # Load content/questions into the pool
  $ twoofus job assign-daily-question       # Run a job against the local database
  $ twoofus job scan-reminders --remote URL # Trigger a deployed job webhook
  $ twoofus notify <user-id> --title Hi     # Push to every device of a user
  $ twoofus vapid generate                  # Create a VAPID key pair
  $ twoofus token <user-id>                 # Mint a bearer token for local testing`,
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.QuestionsCmd())
	rootCmd.AddCommand(cmd.JobCmd())
	rootCmd.AddCommand(cmd.NotifyCmd())
	rootCmd.AddCommand(cmd.VapidCmd())
	rootCmd.AddCommand(cmd.TokenCmd())
	rootCmd.AddCommand(cmd.DevCmd())

	err := rootCmd.Execute()
	logger.Flush()
	if err != nil {
		os.Exit(1)
	}
}
