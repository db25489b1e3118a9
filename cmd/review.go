package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/spacedrep"
	"github.com/abhisek/conjuga/internal/verb"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Inspect and update the review queue",
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review states (due only with --due)",
	RunE: func(cmd *cobra.Command, args []string) error {
		dueOnly, _ := cmd.Flags().GetBool("due")
		ctx := cmd.Context()
		e, err := openEnv(ctx, envOptions{noSnapshot: true})
		if err != nil {
			return err
		}
		defer e.Close(ctx, false)

		now := e.now()
		var states []*spacedrep.ReviewState
		if dueOnly {
			states, err = e.reviews.DueStates(ctx, cfg.User, now)
		} else {
			states, err = e.reviews.States(ctx, cfg.User)
		}
		if err != nil {
			return fmt.Errorf("query reviews: %w", err)
		}
		if len(states) == 0 {
			fmt.Println("No review states found.")
			return nil
		}

		fmt.Printf("%-36s  %5s  %4s  %-10s  %-16s  %s\n",
			"Cell", "Stage", "Hits", "Status", "Next review", "Interval")
		fmt.Println(strings.Repeat("─", 96))
		for _, rs := range states {
			fmt.Printf("%-36s  %5d  %4d  %-10s  %-16s  %dd\n",
				rs.Cell.ID(), rs.Stage, rs.ConsecutiveHits, rs.Status(now),
				rs.NextReviewDate.Local().Format("2006-01-02 15:04"), rs.CurrentIntervalDays())
		}
		fmt.Printf("\n%d cells\n", len(states))
		return nil
	},
}

var reviewRecordCmd = &cobra.Command{
	Use:   "record <mood|tense|person> <correct|wrong>",
	Short: "Record a review result for a cell",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cell, err := parseCell(args[0])
		if err != nil {
			return err
		}
		var correct bool
		switch args[1] {
		case "correct", "right", "ok":
			correct = true
		case "wrong", "miss":
		default:
			return fmt.Errorf("result must be correct or wrong, got %q", args[1])
		}

		ctx := cmd.Context()
		e, err := openEnv(ctx, envOptions{noSnapshot: true})
		if err != nil {
			return err
		}
		defer e.Close(ctx, false)

		rs, err := e.reviews.RecordReview(ctx, cfg.User, cell, correct, e.now())
		if err != nil {
			return err
		}
		fmt.Printf("%s  stage %d  next review %s\n",
			rs.Cell.ID(), rs.Stage, rs.NextReviewDate.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	reviewListCmd.Flags().Bool("due", false, "Only show cells due now")

	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewRecordCmd)
}

func parseCell(s string) (spacedrep.Cell, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 {
		return spacedrep.Cell{}, fmt.Errorf("invalid cell %q: want mood|tense|person", s)
	}
	cell := spacedrep.Cell{Mood: verb.Mood(parts[0]), Tense: verb.Tense(parts[1]), Person: verb.Person(parts[2])}
	if !verb.ValidTopic(verb.K(cell.Mood, cell.Tense)) || cell.Tense == "" || verb.IsMixedTopic(verb.K(cell.Mood, cell.Tense)) {
		return spacedrep.Cell{}, fmt.Errorf("unknown slot %s|%s", parts[0], parts[1])
	}
	if !cell.Person.Valid() {
		return spacedrep.Cell{}, fmt.Errorf("unknown person %q", parts[2])
	}
	return cell, nil
}
