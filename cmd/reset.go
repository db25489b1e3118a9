package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long:  "Delete the mastery scores, review queue and answer history of the configured learner.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes all data for learner %q; rerun with --yes to confirm", cfg.User)
		}

		dbPath, err := resolveDBPath()
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.ResetUser(cmd.Context(), cfg.User); err != nil {
			return err
		}
		fmt.Printf("Reset learner %q.\n", cfg.User)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
