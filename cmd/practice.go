package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/materialize"
	"github.com/abhisek/conjuga/internal/session"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start an interactive practice session",
	Long:  "Type the conjugated form for each prompt. Enter q to finish the session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close(ctx, true)

		sess, err := session.New(session.Options{
			UserID:   cfg.User,
			Settings: e.settings,
			Picker:   e.sched,
			Reviews:  e.reviews,
			Mastery:  e.mastery,
			Logger:   e.log,
			Now:      e.now,
		})
		if err != nil {
			return err
		}

		in := bufio.NewScanner(os.Stdin)
		ask := func(item materialize.Item) (string, bool) {
			fmt.Printf("%s  %s %s  %s > ", item.Lemma, item.Mood, item.Tense, item.Person)
			if !in.Scan() {
				return "", false
			}
			text := strings.TrimSpace(in.Text())
			return text, text != "q"
		}

	loop:
		for {
			res, err := sess.Next(ctx)
			if err != nil {
				return err
			}
			if res.IsSentinel {
				fmt.Println("Nothing to practice with these settings:", res.Reason)
				break
			}

			items := []materialize.Item{res.Item}
			if res.SecondItem != nil {
				items = append(items, *res.SecondItem)
			}
			correct := make([]bool, 0, len(items))
			for _, item := range items {
				answer, ok := ask(item)
				if !ok {
					break loop
				}
				right := session.CheckAnswer(answer, item)
				if right {
					fmt.Println("  ✓")
				} else {
					fmt.Printf("  ✗ %s\n", item.Form.Value)
				}
				correct = append(correct, right)
			}

			transitions, err := sess.Answer(ctx, correct...)
			if err != nil {
				return err
			}
			for _, tr := range transitions {
				fmt.Printf("  %s: %s → %s\n", tr.Key, tr.From, tr.To)
			}
		}

		sum := sess.Summary()
		fmt.Printf("\n%d answered, %d correct (%.0f%%)\n", sum.TotalAnswered, sum.TotalCorrect, sum.Accuracy*100)
		return nil
	},
}
