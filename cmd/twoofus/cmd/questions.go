package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func QuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Manage the question pool",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Insert questions from content/questions that are not in the pool yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer closeApp(a)

			result, err := a.QuestionBankService.Sync(cmd.Context())
			if err != nil {
				return fail("sync questions: %v", err)
			}
			color.Green("✓ Synced questions")
			faint.Printf("  added %d, already present %d\n", result.Added, result.Existing)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Parse content/questions and report what would be loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer closeApp(a)

			questions, err := a.QuestionBankService.Load()
			if err != nil {
				return fail("load questions: %v", err)
			}
			counts := map[string]int{}
			for _, q := range questions {
				counts[q.Category]++
			}
			color.Green("✓ %d questions", len(questions))
			for category, n := range counts {
				faint.Printf("  %-16s %d\n", category, n)
			}
			return nil
		},
	})

	return cmd
}
