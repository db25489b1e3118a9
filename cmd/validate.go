package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check content packs, the curriculum graph and the settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := cfg.Settings()
		if err != nil {
			return err
		}
		fmt.Printf("settings    ok  %s\n", s.CacheKey())

		if err := curriculum.Default().Validate(); err != nil {
			return fmt.Errorf("curriculum: %w", err)
		}
		fmt.Printf("curriculum  ok  %d entries\n", len(curriculum.Default().Entries()))

		source, err := loadSource(logger.Nop())
		if err != nil {
			return err
		}
		for _, p := range source.Packs() {
			fmt.Printf("pack        ok  %s %s (%d verbs, %d forms)\n", p.Name, p.Version, len(p.Infos()), len(p.FormsList()))
		}
		pool, err := source.Pool(cmd.Context(), s.Region)
		if err != nil {
			return err
		}
		fmt.Printf("pool        ok  %d forms, %d verbs, fingerprint %s\n", pool.Len(), len(source.Catalog().Lemmas()), pool.Fingerprint())
		return nil
	},
}
