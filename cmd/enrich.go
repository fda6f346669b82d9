package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/model"
	"github.com/tastelondon/enrich-cli/internal/store"
)

var (
	enrichPlaceID string
	enrichName    string
	enrichCity    string
	enrichArea    string
	enrichWebsite string
	enrichLat     float64
	enrichLon     float64
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run enrichment for a single restaurant",
	Long:  "Enriches one record from flags, or from the store when only --place-id is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := enrichInput(ctx, cmd, env.Store)
		if err != nil {
			return err
		}

		updated, run, err := env.Pipeline.EnrichOne(ctx, rec)
		if err != nil {
			return eris.Wrapf(err, "enrich %s", rec.PlaceID)
		}

		zap.L().Info("record enriched",
			zap.String("place_id", updated.PlaceID),
			zap.String("run_id", run.ID),
			zap.String("directory_status", string(updated.DirectoryStatus)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(updated)
	},
}

// enrichInput builds the record from flags, falling back to the stored
// record when only the place ID was given.
func enrichInput(ctx context.Context, cmd *cobra.Command, st store.Store) (model.Restaurant, error) {
	if enrichName == "" {
		rec, err := st.GetRestaurant(ctx, enrichPlaceID)
		if err != nil {
			return model.Restaurant{}, eris.Wrapf(err, "load %s", enrichPlaceID)
		}
		return *rec, nil
	}

	rec := model.Restaurant{
		PlaceID: enrichPlaceID,
		Name:    enrichName,
		City:    enrichCity,
		Area:    enrichArea,
		Website: enrichWebsite,
	}
	latSet := cmd.Flags().Changed("lat")
	lonSet := cmd.Flags().Changed("lon")
	if latSet != lonSet {
		return model.Restaurant{}, eris.New("lat and lon must be set together")
	}
	if latSet {
		rec.Coords = &model.Coordinates{Lat: enrichLat, Lon: enrichLon}
	}
	return rec, nil
}

func init() {
	enrichCmd.Flags().StringVar(&enrichPlaceID, "place-id", "", "stable record identifier (required)")
	enrichCmd.Flags().StringVar(&enrichName, "name", "", "restaurant name (omit to load the stored record)")
	enrichCmd.Flags().StringVar(&enrichCity, "city", "", "city")
	enrichCmd.Flags().StringVar(&enrichArea, "area", "", "neighbourhood or area")
	enrichCmd.Flags().StringVar(&enrichWebsite, "website", "", "restaurant website URL")
	enrichCmd.Flags().Float64Var(&enrichLat, "lat", 0, "latitude in decimal degrees")
	enrichCmd.Flags().Float64Var(&enrichLon, "lon", 0, "longitude in decimal degrees")
	_ = enrichCmd.MarkFlagRequired("place-id")
	rootCmd.AddCommand(enrichCmd)
}
