package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature/yaml"
	"github.com/psephology/psephos/split"
	"github.com/spf13/cobra"
)

type splitCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	metadataInput string
	output        string
	splitOutput   string
	fraction      float64
	seed          int64
}

func splitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &splitCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dataset into two datasets",
		Long:  `Split a dataset into an output dataset and a split dataset, drawing the split dataset as a seeded random fraction of the samples so the split can be reproduced`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			config.Logf("Features from metadata read")
			ds, err := openDataset(ctx, config.rootCmdConfig, config.dataInput, features, dataset.New)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			rng := rand.New(rand.NewSource(config.seed))
			config.Logf("Splitting dataset with seed %d, drawing a fraction of %f...", config.seed, config.fraction)
			rest, drawn, err := split.Validation(ctx, ds, config.fraction, rng)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			output, err := newDatasetWriter(ctx, config.rootCmdConfig, config.output, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			splitOutput, err := newDatasetWriter(ctx, config.rootCmdConfig, config.splitOutput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			restCount, err := dumpDataset(ctx, rest, output)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			drawnCount, err := dumpDataset(ctx, drawn, splitOutput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			config.Logf("Done")
			config.Logf("Input dataset with %d samples was split into datasets with %d and %d samples", restCount+drawnCount, restCount, drawnCount)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to split (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path or connection URL to dump the output dataset (defaults to STDOUT in CSV)")
	cmd.PersistentFlags().StringVarP(&(config.splitOutput), "split-output", "s", "", "path or connection URL to dump the drawn split dataset (required)")
	cmd.PersistentFlags().Float64VarP(&(config.fraction), "fraction", "f", 0.2, "fraction of the samples to draw into the split dataset, between 0 and 1 exclusive")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 1, "seed for the random draw, so that the same seed over the same input reproduces the same split")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	if scc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.fraction <= 0.0 || scc.fraction >= 1.0 {
		return fmt.Errorf("fraction flag was set to an invalid value: it must be a number between 0 and 1 exclusive")
	}
	return nil
}

func dumpDataset(ctx context.Context, ds dataset.Dataset, w writableDataset) (int, error) {
	samples, err := ds.Samples(ctx)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(ctx, samples)
	if err != nil {
		return n, err
	}
	return n, w.Flush()
}
