package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Browse the curriculum graph",
}

var curriculumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List curriculum entries (optionally filtered by level or family)",
	RunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("introduced")
		family, _ := cmd.Flags().GetString("family-filter")

		g := curriculum.Default()
		var entries []curriculum.Entry

		switch {
		case levelFlag != "" && family != "":
			return fmt.Errorf("use --introduced or --family-filter, not both")
		case levelFlag != "":
			level, err := settings.ParseLevel(levelFlag)
			if err != nil {
				return err
			}
			entries = g.ByLevel(level)
			if len(entries) == 0 {
				return fmt.Errorf("no entries introduced at level %s", level)
			}
		case family != "":
			for _, k := range g.FamilyKeys(curriculum.Family(family)) {
				e, _ := g.Entry(k)
				entries = append(entries, e)
			}
			if len(entries) == 0 {
				return fmt.Errorf("no entries found for family %q", family)
			}
		default:
			entries = g.TopologicalOrder()
		}

		// Header.
		fmt.Printf("%-28s  %-5s  %5s  %-22s  %s\n",
			"Key", "Level", "Cplx", "Family", "Prerequisites")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range entries {
			prereqs := make([]string, len(e.Prerequisites))
			for i, p := range e.Prerequisites {
				prereqs[i] = p.String()
			}
			key := e.Key.String()
			if e.Critical {
				key += " *"
			}
			fmt.Printf("%-28s  %-5s  %5d  %-22s  %s\n",
				key, e.Level, e.Complexity,
				curriculum.FamilyDisplayName(e.Family), strings.Join(prereqs, ", "))
		}

		fmt.Printf("\n%d entries (* critical)\n", len(entries))
		return nil
	},
}

var curriculumPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the practice plan for the configured learner and level",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx, envOptions{noSnapshot: true})
		if err != nil {
			return err
		}
		defer e.Close(ctx, false)

		records, err := e.mastery.Mastery(ctx, cfg.User)
		if err != nil {
			return err
		}
		plan := e.graph.BuildPlan(e.settings.Level, records)

		fmt.Printf("Plan for %s at %s (%d mastery records)\n", cfg.User, plan.Level, len(records))
		fmt.Printf("Weights: core %.2f  review %.2f  exploration %.2f  consolidation %.2f\n",
			plan.Weights.Core, plan.Weights.Review, plan.Weights.Exploration, plan.Weights.Consolidation)

		for _, c := range []curriculum.Category{
			curriculum.CategoryCore,
			curriculum.CategoryReview,
			curriculum.CategoryExploration,
			curriculum.CategoryConsolidation,
		} {
			bucket := plan.Bucket(c)
			fmt.Println()
			fmt.Printf("%s (%d)\n", strings.ToUpper(string(c)), len(bucket))
			fmt.Println(strings.Repeat("─", 64))
			for _, wk := range bucket {
				fmt.Printf("%-28s  weight %.2f  ready %.2f  %s  bonus %.2f\n",
					wk.Key, wk.Weight, wk.Readiness, masteryLabel(wk.Mastery), plan.Priority(wk.Key))
			}
		}

		fmt.Println()
		fmt.Println("Progression:", joinKeys(plan.Progression))
		return nil
	},
}

func init() {
	curriculumListCmd.Flags().String("introduced", "", "Filter by introduction level (A1..C2)")
	curriculumListCmd.Flags().String("family-filter", "", "Filter by family (e.g. past, subjunctive)")

	curriculumCmd.AddCommand(curriculumListCmd)
	curriculumCmd.AddCommand(curriculumPlanCmd)
}

func masteryLabel(m float64) string {
	if m < 0 {
		return "mastery  --"
	}
	return fmt.Sprintf("mastery %3.0f", m)
}

func joinKeys(keys []verb.Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, " → ")
}
