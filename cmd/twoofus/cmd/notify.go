package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/twoofus/server/internal/model"
)

func NotifyCmd() *cobra.Command {
	var msg model.PushMessage

	cmd := &cobra.Command{
		Use:   "notify <user-id>",
		Short: "Push a message to every device of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer closeApp(a)

			result, err := a.NotificationService.Dispatch(cmd.Context(), args[0], msg)
			if err != nil {
				return fail("notify %s: %v", args[0], err)
			}
			if result.Sent == 0 {
				color.Yellow("⚠ Nothing delivered to %s", args[0])
			} else {
				color.Green("✓ Delivered to %d device(s)", result.Sent)
			}
			faint.Printf("  failed %d, cleaned %d\n", result.Failed, result.Cleaned)
			return nil
		},
	}

	cmd.Flags().StringVar(&msg.Title, "title", "The Two of Us", "notification title")
	cmd.Flags().StringVar(&msg.Body, "body", "", "notification body")
	cmd.Flags().StringVar(&msg.URL, "url", "/", "path or URL opened on click")
	cmd.Flags().StringVar(&msg.Tag, "tag", "", "replaces an earlier notification with the same tag")
	cmd.Flags().IntVar(&msg.Badge, "badge", 0, "app badge count")
	return cmd
}
