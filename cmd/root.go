package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/conjuga/internal/config"
	"github.com/abhisek/conjuga/internal/store"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "conjuga",
	Short: "Spanish conjugation drill scheduler",
	Long: "Conjuga picks the next verb form to practice from a curriculum, your " +
		"review queue and your mastery, keeping sessions varied.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "Config file (default ./conjuga.yaml or $XDG_CONFIG_HOME/conjuga/conjuga.yaml)")
	f.String("db", "", "Path to SQLite database file (overrides CONJUGA_DB env var)")
	f.String("user", "", "Learner ID")
	f.String("level", "", "Level: A1..C2 or ALL")
	f.String("region", "", "Region: la_general, rioplatense, peninsular or global")
	f.String("verb-type", "", "Verb type: all, regular or irregular")
	f.String("mode", "", "Practice mode: mixed, specific or review")
	f.String("target", "", "Target as mood or mood|tense (specific and review modes)")
	f.String("family", "", "Restrict mixed practice to a tense family")
	f.Bool("double", false, "Present two forms of the same verb together")
	f.StringSlice("packs", nil, "Extra content pack files or directories")
	f.Uint64("seed", 0, "Random seed (0 picks one)")
	f.String("log-level", "", "Log level: debug, info, warn or error")

	for key, flag := range map[string]string{
		"db":        "db",
		"user":      "user",
		"level":     "level",
		"region":    "region",
		"verb_type": "verb-type",
		"mode":      "mode",
		"target":    "target",
		"family":    "family",
		"double":    "double",
		"packs":     "packs",
		"seed":      "seed",
		"log.level": "log-level",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path from --db, the config file or
// CONJUGA_DB, falling back to the default XDG path.
func resolveDBPath() (string, error) {
	if cfg != nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
