package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/scheduler"
	"github.com/abhisek/conjuga/internal/session"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a simulated learner and report selection variety",
	Long: "Serve items to a simulated learner on a fake clock against an " +
		"in-memory database, then print how items were spread across tenses, " +
		"persons and selection tiers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		accuracy, _ := cmd.Flags().GetFloat64("accuracy")
		step, _ := cmd.Flags().GetDuration("step")
		if accuracy < 0 || accuracy > 1 {
			return fmt.Errorf("--accuracy must be within [0, 1], got %v", accuracy)
		}
		ctx := cmd.Context()

		clock := time.Now().UTC()
		now := func() time.Time { return clock }
		e, err := openEnv(ctx, envOptions{dbPath: ":memory:", now: now, noSnapshot: true})
		if err != nil {
			return err
		}
		defer e.Close(ctx, false)

		sess, err := session.New(session.Options{
			UserID:   cfg.User,
			Settings: e.settings,
			Picker:   e.sched,
			Reviews:  e.reviews,
			Mastery:  e.mastery,
			Logger:   e.log,
			Now:      now,
		})
		if err != nil {
			return err
		}

		answer := func(*scheduler.Result) bool { return e.rng.Float64() < accuracy }
		if err := session.Run(ctx, sess, count, answer, func() { clock = clock.Add(step) }); err != nil {
			return err
		}
		printSummary(sess.Summary())
		return nil
	},
}

func init() {
	simulateCmd.Flags().IntP("count", "n", 100, "Number of items to serve")
	simulateCmd.Flags().Float64("accuracy", 0.8, "Probability the simulated learner answers correctly")
	simulateCmd.Flags().Duration("step", 20*time.Second, "Simulated time between items")
}

func printSummary(sum *session.Summary) {
	fmt.Printf("Items:      %d (%d sentinel)\n", sum.TotalItems, sum.Sentinels)
	fmt.Printf("Accuracy:   %.0f%% of %d answers\n", sum.Accuracy*100, sum.TotalAnswered)
	fmt.Printf("Irregular:  %.0f%%\n", sum.IrregularRatio()*100)
	fmt.Printf("Duration:   %s\n", sum.Duration)

	section := func(title string, counts map[string]int) {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if counts[keys[i]] != counts[keys[j]] {
				return counts[keys[i]] > counts[keys[j]]
			}
			return keys[i] < keys[j]
		})
		fmt.Println()
		fmt.Println(title)
		fmt.Println(strings.Repeat("─", 40))
		for _, k := range keys {
			fmt.Printf("%-32s  %6d\n", k, counts[k])
		}
	}

	methods := make(map[string]int)
	for m, n := range sum.Methods {
		methods[string(m)] = n
	}
	tenses := make(map[string]int)
	for k, n := range sum.Tenses {
		tenses[k.String()] = n
	}
	persons := make(map[string]int)
	for p, n := range sum.Persons {
		persons[string(p)] = n
	}
	section("Selection tier", methods)
	section("Tense", tenses)
	section("Person", persons)
	section("Verb", sum.Lemmas)
}
