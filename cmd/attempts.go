package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/store"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "List recorded answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		method, _ := cmd.Flags().GetString("method")

		dbPath, err := resolveDBPath()
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		events, err := s.EventRepo().Attempts(cmd.Context(), cfg.User, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No attempts found.")
			return nil
		}

		// Header.
		fmt.Printf("%-5s  %-19s  %-10s  %-36s  %-24s  %-7s  %s\n",
			"Seq", "Timestamp", "Verb", "Cell", "Method", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 118))

		for _, e := range events {
			if method != "" && e.Method != method {
				continue
			}
			ok := "✓"
			if !e.Correct {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-10s  %-36s  %-24s  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Lemma,
				e.Mood+"|"+e.Tense+"|"+e.Person,
				e.Method,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

func init() {
	attemptsCmd.Flags().Int("limit", 50, "Maximum number of attempts to list")
	attemptsCmd.Flags().String("method", "", "Only show attempts selected by this tier")
}
