package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mateonav/geolayers/internal/composer"
	"github.com/mateonav/geolayers/internal/core/model"
	"github.com/mateonav/geolayers/internal/geotab"
)

var (
	clustering bool
	modeName   string
	radiusDeg  float64
	cellRes    int
	colors     []string
	asGeoJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "geolayers",
	Short: "Compose geospatial CSV files into a layered map description",
}

var composeCmd = &cobra.Command{
	Use:   "compose <file.csv> [file.csv...]",
	Short: "Normalize CSV files and print the composed map description",
	Long: `Reads each CSV file as one dataset, infers its coordinate columns,
drops rows with invalid coordinates and prints the composed map
description (or a GeoJSON FeatureCollection) to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompose,
}

var summaryCmd = &cobra.Command{
	Use:   "summary <file.csv> [file.csv...]",
	Short: "Print per-dataset validation statistics without composing",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummary,
}

func init() {
	composeCmd.Flags().BoolVar(&clustering, "clustering", true, "Group nearby points into clusters")
	composeCmd.Flags().StringVar(&modeName, "mode", "detailed", "Clustering mode: detailed or highthroughput")
	composeCmd.Flags().Float64Var(&radiusDeg, "radius", 0, "Detailed-mode grouping radius in degrees (0 = default)")
	composeCmd.Flags().IntVar(&cellRes, "cell-res", 0, "High-throughput cell resolution (0 = default)")
	composeCmd.Flags().StringSliceVar(&colors, "color", nil, "Layer colors, one per file in order")
	composeCmd.Flags().BoolVar(&asGeoJSON, "geojson", false, "Emit a GeoJSON FeatureCollection instead")

	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var palette = []string{"blue", "red", "green", "purple", "orange", "darkblue", "cadetblue"}

func loadDataset(path string) (*geotab.Dataset, geotab.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, geotab.Summary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	tbl, err := geotab.ReadCSV(filepath.Base(path), f)
	if err != nil {
		return nil, geotab.Summary{}, fmt.Errorf("read %s: %w", path, err)
	}
	roles := geotab.InferRoles(tbl.Columns, tbl.Rows)
	ds := geotab.Normalize(tbl, roles)
	return ds, geotab.Summarize(ds, tbl.Columns), nil
}

func runCompose(cmd *cobra.Command, args []string) error {
	mode, err := model.ParseClusterMode(modeName)
	if err != nil {
		return err
	}

	inputs := make([]composer.LayerInput, 0, len(args))
	for i, path := range args {
		ds, _, err := loadDataset(path)
		if err != nil {
			return err
		}
		color := palette[i%len(palette)]
		if i < len(colors) && colors[i] != "" {
			color = colors[i]
		}
		inputs = append(inputs, composer.LayerInput{
			Dataset:  ds,
			Identity: model.VisualIdentity{Name: ds.Name, Color: color},
		})
	}

	md := composer.Compose(inputs, composer.Options{
		ClusteringEnabled: clustering,
		Mode:              mode,
		RadiusDeg:         radiusDeg,
		CellRes:           cellRes,
	})

	var out []byte
	if asGeoJSON {
		out, err = composer.ToGeoJSON(md)
	} else {
		out, err = json.MarshalIndent(md, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	summaries := make([]geotab.Summary, 0, len(args))
	for _, path := range args {
		_, s, err := loadDataset(path)
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	}
	out, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
