package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/materialize"
	"github.com/abhisek/conjuga/internal/scheduler"
	"github.com/abhisek/conjuga/internal/session"
)

// nextOutput is the JSON shape printed for each selection.
type nextOutput struct {
	Method     scheduler.Method  `json:"method"`
	IsFallback bool              `json:"is_fallback"`
	Reason     string            `json:"reason,omitempty"`
	Item       materialize.Item  `json:"item"`
	Second     *materialize.Item `json:"second,omitempty"`
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next practice items as JSON",
	Long: "Select practice items with the configured settings. Consecutive items " +
		"are chained so the same verb and person are not repeated back to back.",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
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
			Logger:   e.log,
			Now:      e.now,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for i := 0; i < count; i++ {
			res, err := sess.Next(ctx)
			if err != nil {
				return err
			}
			if err := enc.Encode(nextOutput{
				Method:     res.Method,
				IsFallback: res.IsFallback,
				Reason:     res.Reason,
				Item:       res.Item,
				Second:     res.SecondItem,
			}); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	nextCmd.Flags().IntP("count", "n", 1, "Number of items to select")
}
