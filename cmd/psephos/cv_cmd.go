package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	psephos "github.com/psephology/psephos"
	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature/yaml"
	"github.com/spf13/cobra"
)

type cvCmdConfig struct {
	*rootCmdConfig
	dataInput           string
	metadataInput       string
	output              string
	labelFeature        string
	folds               int
	seed                int64
	selection           string
	minNodeSize         int
	minImpurityDecrease float64
}

func cvCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &cvCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Cross-validate a tree to pick its pruned size",
		Long:  `Grow a tree from a dataset, score its cost-complexity pruning sequence with k-fold cross-validation and output the tree pruned to the selected size`,
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
			ds, err := openDataset(ctx, config.rootCmdConfig, config.dataInput, features, dataset.New)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			label, predictors, err := labelAndPredictors(features, config.labelFeature)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			policy := &psephos.GrowthPolicy{
				MinNodeSize:         config.minNodeSize,
				MinImpurityDecrease: config.minImpurityDecrease,
			}
			config.Logf("Growing tree to predict %s...", label.Name())
			t, err := psephos.Grow(ctx, ds, label, predictors, policy)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(5)
			}
			g := &psephos.Grower{Label: label, Features: predictors, Policy: policy}
			rng := rand.New(rand.NewSource(config.seed))
			config.Logf("Cross-validating pruned sizes over %d folds with seed %d...", config.folds, config.seed)
			result, err := g.CrossValidate(ctx, t, ds, config.folds, rng)
			if err != nil {
				fmt.Fprintf(os.Stderr, "cross-validating the tree: %v\n", err)
				os.Exit(6)
			}
			fmt.Print(result)
			size := result.SelectSize(config.selectionPolicy())
			fmt.Printf("selected size: %d leaves\n", size)
			config.Logf("Pruning tree to %d leaves...", size)
			pruned, err := psephos.Prune(ctx, t, size)
			if err != nil {
				fmt.Fprintf(os.Stderr, "pruning tree: %v\n", err)
				os.Exit(7)
			}
			config.Logf("Done")
			if config.output != "" {
				err = saveTree(ctx, pruned, config.output, features)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(8)
				}
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to use (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file or redis:// URL to which the pruned tree will be written (omitted: only the scores are printed)")
	cmd.PersistentFlags().StringVarP(&(config.labelFeature), "label-feature", "l", "", "name of the feature the tree should predict (required)")
	cmd.PersistentFlags().IntVarP(&(config.folds), "folds", "k", 10, "number of cross-validation folds")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 1, "seed for dealing samples into folds, so the same seed over the same input reproduces the scores")
	cmd.PersistentFlags().StringVar(&(config.selection), "selection", "min", "size selection policy, either min (smallest size with the minimum mean score) or 1se (smallest size within one standard error of it)")
	cmd.PersistentFlags().IntVar(&(config.minNodeSize), "min-node-size", psephos.DefaultGrowthPolicy().MinNodeSize, "minimum number of training samples a node must have to be split further")
	cmd.PersistentFlags().Float64Var(&(config.minImpurityDecrease), "min-impurity-decrease", psephos.DefaultGrowthPolicy().MinImpurityDecrease, "minimum impurity decrease a split must achieve to be applied")
	return cmd
}

func (ccc *cvCmdConfig) Validate() error {
	if ccc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if ccc.labelFeature == "" {
		return fmt.Errorf("required label-feature flag was not set")
	}
	if ccc.folds < 2 {
		return fmt.Errorf("folds flag was set to an invalid value: it must be an integer greater than 1")
	}
	if ccc.selection != "min" && ccc.selection != "1se" {
		return fmt.Errorf("selection flag was set to an invalid value: it must be either min or 1se")
	}
	return nil
}

func (ccc *cvCmdConfig) selectionPolicy() psephos.SelectionPolicy {
	if ccc.selection == "1se" {
		return psephos.SelectOneStdErr
	}
	return psephos.SelectMin
}
