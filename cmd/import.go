package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/dataset"
)

var importInput string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load restaurants from a CSV into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		in, err := os.Open(importInput)
		if err != nil {
			return eris.Wrap(err, "open input")
		}
		records, err := dataset.Read(in)
		_ = in.Close()
		if err != nil {
			return err
		}

		for _, rec := range records {
			if err := st.UpsertRestaurant(ctx, rec); err != nil {
				return eris.Wrapf(err, "import %s", rec.PlaceID)
			}
		}

		zap.L().Info("import complete",
			zap.String("input", importInput),
			zap.Int("records", len(records)),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importInput, "input", "", "input CSV path (required)")
	_ = importCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(importCmd)
}
