package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/verb"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery per paradigm slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbs, _ := cmd.Flags().GetBool("verbs")
		ctx := cmd.Context()
		e, err := openEnv(ctx, envOptions{noSnapshot: true})
		if err != nil {
			return err
		}
		defer e.Close(ctx, false)

		rows, err := e.store.MasteryRepo().List(ctx, cfg.User)
		if err != nil {
			return fmt.Errorf("list mastery: %w", err)
		}
		if len(rows) == 0 {
			fmt.Println("No practice recorded yet.")
			return nil
		}
		sort.Slice(rows, func(i, j int) bool {
			ki, kj := e.graph.ComplexityOf(verb.K(verb.Mood(rows[i].Mood), verb.Tense(rows[i].Tense))), e.graph.ComplexityOf(verb.K(verb.Mood(rows[j].Mood), verb.Tense(rows[j].Tense)))
			if ki != kj {
				return ki < kj
			}
			return rows[i].Lemma < rows[j].Lemma
		})

		fmt.Printf("%-28s  %-12s  %6s  %8s  %s\n", "Slot", "Verb", "Score", "Attempts", "State")
		fmt.Println(strings.Repeat("─", 72))
		for _, row := range rows {
			if row.Lemma != "" && !verbs {
				continue
			}
			lemma := row.Lemma
			if lemma == "" {
				lemma = "(all)"
			}
			fmt.Printf("%-28s  %-12s  %6.1f  %8d  %s\n",
				row.Mood+"|"+row.Tense, lemma, row.Score, row.Attempts, e.mastery.State(row))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("verbs", false, "Include per-verb scores")
}
